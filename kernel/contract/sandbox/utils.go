package sandbox

import (
	"bytes"
	"fmt"

	"github.com/xuperchain/xstake/kernel/ledger"
)

// BucketSeperator separator between bucket and raw key
const BucketSeperator = "/"

// DelFlag delete flag
const DelFlag = "\x00"

func makeRawKey(bucket string, key []byte) []byte {
	k := make([]byte, 0, len(bucket)+len(BucketSeperator)+len(key))
	k = append(k, bucket...)
	k = append(k, BucketSeperator...)
	return append(k, key...)
}

// makeRawLimit returns the exclusive raw upper bound of a select. A nil
// endKey selects up to the end of the bucket.
func makeRawLimit(bucket string, endKey []byte) []byte {
	if endKey != nil {
		return makeRawKey(bucket, endKey)
	}
	k := make([]byte, 0, len(bucket)+1)
	k = append(k, bucket...)
	// the byte right after the separator
	return append(k, BucketSeperator[0]+1)
}

func parseRawKey(rawKey []byte) (string, []byte, error) {
	idx := bytes.Index(rawKey, []byte(BucketSeperator))
	if idx < 0 {
		return "", nil, fmt.Errorf("parseRawKey failed, invalid raw key:%s", string(rawKey))
	}
	bucket := string(rawKey[:idx])
	key := rawKey[idx+1:]
	return bucket, key, nil
}

// IsEmptyVersionedData check if VersionedData is empty
func IsEmptyVersionedData(vd *ledger.VersionedData) bool {
	return vd.IsEmpty()
}

func IsDelFlag(value []byte) bool {
	return bytes.Equal([]byte(DelFlag), value)
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

func emptyVersionedData(bucket string, key []byte) *ledger.VersionedData {
	return &ledger.VersionedData{
		PureData: &ledger.PureData{
			Bucket: bucket,
			Key:    copyBytes(key),
		},
	}
}
