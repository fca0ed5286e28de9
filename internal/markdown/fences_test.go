package markdown

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestUnclosedFences_BalancedDocument_ReportsNothing(t *testing.T) {
	src := []byte("intro\n\n```vue\n<template />\n```\n\ntail\n")
	require.Empty(t, UnclosedFences(src))
}

func TestUnclosedFences_MissingCloser_ReportsOpeningLine(t *testing.T) {
	src := []byte("# Lazy Hydration\n\n```js\nconst x = 1\n")

	fences := UnclosedFences(src)

	require.Len(t, fences, 1)
	require.Equal(t, Fence{Line: 3, Marker: "```", Info: "js"}, fences[0])
}

func TestUnclosedFences_ShorterCloser_DoesNotClose(t *testing.T) {
	src := []byte("````md\n```\ninner\n```\n")

	fences := UnclosedFences(src)

	require.Len(t, fences, 1)
	require.Equal(t, 1, fences[0].Line)
	require.Equal(t, "````", fences[0].Marker)
}

func TestUnclosedFences_LongerCloser_Closes(t *testing.T) {
	src := []byte("```\ncode\n`````\n")
	require.Empty(t, UnclosedFences(src))
}

func TestUnclosedFences_TildeInsideBacktickBlock_IsContent(t *testing.T) {
	src := []byte("```\n~~~\n```\n")
	require.Empty(t, UnclosedFences(src))
}

func TestUnclosedFences_CloserWithInfoString_IsContent(t *testing.T) {
	src := []byte("```\ncode\n```js\n")

	fences := UnclosedFences(src)

	require.Len(t, fences, 1)
	require.Equal(t, 1, fences[0].Line)
}

func TestUnclosedFences_IndentedFourSpaces_NotAFence(t *testing.T) {
	src := []byte("    ```\nplain indented code\n")
	require.Empty(t, UnclosedFences(src))
}

func TestUnclosedFences_BacktickInfoWithBacktick_NotAFence(t *testing.T) {
	src := []byte("``` a ` b\n")
	require.Empty(t, UnclosedFences(src))
}

func TestUnclosedFences_Properties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	genDoc := gen.SliceOf(gen.OneConstOf(
		"```",
		"```js",
		"~~~",
		"plain prose line",
		"",
	)).Map(func(lines []string) string {
		out := ""
		for _, l := range lines {
			out += l + "\n"
		}
		return out
	})

	properties.Property("appending a closer to an unclosed doc balances it", prop.ForAll(
		func(doc string) bool {
			open := UnclosedFences([]byte(doc))
			if len(open) == 0 {
				return true
			}
			fixed := doc + "\n" + open[0].Marker + "\n"
			return len(UnclosedFences([]byte(fixed))) == 0
		},
		genDoc,
	))

	properties.Property("at most one fence can be left open", prop.ForAll(
		func(doc string) bool {
			return len(UnclosedFences([]byte(doc))) <= 1
		},
		genDoc,
	))

	properties.TestingRun(t)
}
