package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFenced(t *testing.T) {
	block, ok := ExtractFenced("prefix\n```json\n{\"a\":1}\n```\nsuffix")
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, block)

	// 无语言标记
	block, ok = ExtractFenced("```\n{\"a\":1}\n```")
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, block)

	// 首行就是内容时不能吞掉
	block, ok = ExtractFenced("```{\"a\":1}```")
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, block)

	_, ok = ExtractFenced("no fence here")
	assert.False(t, ok)
	_, ok = ExtractFenced("``` unclosed")
	assert.False(t, ok)
}

func TestObjects(t *testing.T) {
	raw := `I think {"direction":"long"} but also note {"nested":{"x":"}"}} end`
	objs := Objects(raw)
	require.Len(t, objs, 2)
	assert.Equal(t, `{"direction":"long"}`, objs[0])
	assert.Equal(t, `{"nested":{"x":"}"}}`, objs[1])
}

func TestObjectsSkipsUnbalanced(t *testing.T) {
	raw := `broken { start then {"ok":true}`
	objs := Objects(raw)
	require.Len(t, objs, 1)
	assert.Equal(t, `{"ok":true}`, objs[0])
}

func TestExtractObjectEscapedQuotes(t *testing.T) {
	obj, ok := ExtractObject(`text {"reason":"he said \"buy\" {now}"} tail`)
	require.True(t, ok)
	assert.Equal(t, `{"reason":"he said \"buy\" {now}"}`, obj)
}
