package shopping

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_Add(t *testing.T) {
	var list List

	list, added, err := list.Add(" 대파 ")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, List{"대파"}, list)

	list, added, err = list.Add("대파")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, list, 1)

	_, _, err = list.Add("  ")
	assert.ErrorIs(t, err, ErrEmptyItem)
}

func TestList_AddKeysOnTrimmedCaseSensitiveName(t *testing.T) {
	list := List{"우유", "Milk"}

	list, added, err := list.Add("\t우유 ")
	require.NoError(t, err)
	assert.False(t, added, "surrounding whitespace is not part of the name")

	list, added, err = list.Add("milk")
	require.NoError(t, err)
	assert.True(t, added, "matching is case-sensitive")
	assert.Equal(t, List{"우유", "Milk", "milk"}, list)
}

func TestList_AddDoesNotAliasOriginal(t *testing.T) {
	original := make(List, 1, 4)
	original[0] = "우유"

	updated, _, err := original.Add("계란")

	require.NoError(t, err)
	assert.Equal(t, List{"우유"}, original)
	assert.Equal(t, List{"우유", "계란"}, updated)
}

func TestList_Remove(t *testing.T) {
	list := List{"우유", "계란"}

	list, removed := list.Remove("우유")
	assert.True(t, removed)
	assert.Equal(t, List{"계란"}, list)

	list, removed = list.Remove("우유")
	assert.False(t, removed)
	assert.Equal(t, List{"계란"}, list)
}

func TestLinkBuilder(t *testing.T) {
	builder, err := NewLinkBuilder("")
	require.NoError(t, err)

	link := builder.Link("참기름 & 깨")
	u, err := url.Parse(link)
	require.NoError(t, err)

	assert.Equal(t, "www.coupang.com", u.Host)
	assert.Equal(t, "참기름 & 깨", u.Query().Get("q"))
	assert.Equal(t, "false", u.Query().Get("rocketAll"))

	_, err = NewLinkBuilder("not a url")
	assert.Error(t, err)
}

func TestAddedNotice(t *testing.T) {
	assert.Equal(t, "대파이(가) 장바구니에 추가되었습니다.", AddedNotice("대파"))
}
