package project

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Digest - sha256, тот же формат, что source.File.Hash.
type Digest [32]byte

// String is the lowercase hex form; disk cache entries are named by it.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short - первые 12 hex-символов, для логов и трассы.
func (d Digest) Short() string { return d.String()[:12] }

// Hasher накапливает digest из частей; части разделены длиной,
// поэтому ("ab","c") и ("a","bc") дают разные ключи.
type Hasher struct{ h hash.Hash }

func NewHasher() *Hasher { return &Hasher{h: sha256.New()} }

func (b *Hasher) Digest(d Digest) *Hasher {
	_, _ = b.h.Write(d[:])
	return b
}

func (b *Hasher) Text(s string) *Hasher {
	var n [4]byte
	l := uint32(len(s)) // #nosec G115 -- cache key parts are short
	n[0], n[1], n[2], n[3] = byte(l>>24), byte(l>>16), byte(l>>8), byte(l)
	_, _ = b.h.Write(n[:])
	_, _ = b.h.Write([]byte(s))
	return b
}

func (b *Hasher) Sum() Digest {
	var out Digest
	copy(out[:], b.h.Sum(nil))
	return out
}

// Combine строит модульный хеш: H(content || dep1 || dep2 ...).
// Порядок deps задаёт вызывающий: dag передаёт их по возрастанию ID.
func Combine(content Digest, deps ...Digest) Digest {
	b := NewHasher().Digest(content)
	for _, d := range deps {
		b.Digest(d)
	}
	return b.Sum()
}
