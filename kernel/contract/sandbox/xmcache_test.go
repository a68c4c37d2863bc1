package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMCachePutGet(t *testing.T) {
	testCases := []struct {
		Bucket string
		Key    string
		Value  string
		Op     string
	}{
		{"b1", "k1", "v1", "put"},
		{"b1", "k1", "v1", "get"},
		{"b1", "k1", "v2", "put"},
		{"b1", "k1", "v2", "get"},
		{"b1", "k1", "", "del"},
		{"b1", "k1", "", "miss"},
		{"b2", "k1", "v3", "put"},
		{"b2", "k1", "v3", "get"},
	}
	store := NewMemXModel()

	mc := NewXModelCache(store)
	for _, test := range testCases {
		switch test.Op {
		case "put":
			require.NoError(t, mc.Put(test.Bucket, []byte(test.Key), []byte(test.Value)))
		case "get":
			v, err := mc.Get(test.Bucket, []byte(test.Key))
			require.NoError(t, err)
			assert.Equal(t, test.Value, string(v))
		case "del":
			require.NoError(t, mc.Del(test.Bucket, []byte(test.Key)))
		case "miss":
			_, err := mc.Get(test.Bucket, []byte(test.Key))
			assert.True(t, IsNotFound(err))
		}
	}

	assert.Equal(t, ErrNilValue, mc.Put("b1", []byte("k"), nil))
}

func TestXMCacheReadThrough(t *testing.T) {
	state := NewMemXModel()
	putVersionedData(state, "test", []byte("a"), []byte("1"))
	putVersionedData(state, "test", []byte("gone"), []byte(DelFlag))

	mc := NewXModelCache(state)
	v, err := mc.Get("test", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	_, err = mc.Get("test", []byte("gone"))
	assert.Equal(t, ErrHasDel, err)

	_, err = mc.Get("test", []byte("none"))
	assert.Equal(t, ErrNotFound, err)

	rwset := mc.RWSet()
	assert.Len(t, rwset.RSet, 3)
	assert.Len(t, rwset.WSet, 0)
}

func TestXMCacheRWSet(t *testing.T) {
	state := NewMemXModel()
	putVersionedData(state, "test", []byte("a"), []byte("1"))

	mc := NewXModelCache(state)
	require.NoError(t, mc.Put("test", []byte("a"), []byte("2")))
	require.NoError(t, mc.Put("test", []byte("b"), []byte("3")))
	require.NoError(t, mc.Del("test", []byte("c")))

	rwset := mc.RWSet()
	// every written key is read first
	require.Len(t, rwset.RSet, 3)
	assert.Equal(t, []byte("txid"), rwset.RSet[0].RefTxid)
	assert.True(t, rwset.RSet[1].IsEmpty())

	require.Len(t, rwset.WSet, 3)
	assert.Equal(t, "2", string(rwset.WSet[0].Value))
	assert.Equal(t, "3", string(rwset.WSet[1].Value))
	assert.True(t, IsDelFlag(rwset.WSet[2].Value))

	// the committed state is untouched
	vd, err := state.Get("test", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(vd.PureData.Value))

	mc.Discard()
	assert.Len(t, mc.RWSet().WSet, 0)
}

func TestXMCacheIterator(t *testing.T) {
	state := NewMemXModel()
	for _, k := range []string{"a", "c", "e", "g"} {
		putVersionedData(state, "test", []byte(k), []byte("old_"+k))
	}
	putVersionedData(state, "other", []byte("b"), []byte("x"))

	mc := NewXModelCache(state)
	// read one key so it sits in the inputs cache
	_, err := mc.Get("test", []byte("e"))
	require.NoError(t, err)
	require.NoError(t, mc.Put("test", []byte("b"), []byte("new_b")))
	require.NoError(t, mc.Put("test", []byte("c"), []byte("new_c")))
	require.NoError(t, mc.Del("test", []byte("g")))

	iter, err := mc.Select("test", nil, nil)
	require.NoError(t, err)
	defer iter.Close()

	var got []string
	for iter.Next() {
		got = append(got, string(iter.Key())+"="+string(iter.Value()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"a=old_a", "b=new_b", "c=new_c", "e=old_e"}, got)

	// iterated backend keys land in the read set
	_, err = mc.inputsCache.Get("test", []byte("a"))
	assert.NoError(t, err)
}

func TestXMCacheIteratorRange(t *testing.T) {
	state := NewMemXModel()
	for _, k := range []string{"k1", "k2", "k3", "k4"} {
		putVersionedData(state, "test", []byte(k), []byte(k))
	}
	mc := NewXModelCache(state)
	require.NoError(t, mc.Put("test", []byte("k25"), []byte("k25")))

	iter, err := mc.Select("test", []byte("k2"), []byte("k4"))
	require.NoError(t, err)
	defer iter.Close()

	var got []string
	for iter.Next() {
		got = append(got, string(iter.Key()))
	}
	assert.Equal(t, []string{"k2", "k25", "k3"}, got)
}

func TestXMReaderFromRWSet(t *testing.T) {
	state := NewMemXModel()
	putVersionedData(state, "test", []byte("a"), []byte("1"))
	mc := NewXModelCache(state)
	_, err := mc.Get("test", []byte("a"))
	require.NoError(t, err)

	reader := XMReaderFromRWSet(mc.RWSet())
	vd, err := reader.Get("test", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(vd.PureData.Value))
}
