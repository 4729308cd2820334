package fingerprint

import (
	"bytes"
	"io"
	"runtime"
	"sync"

	units "github.com/docker/go-units"
	jsoniter "github.com/json-iterator/go"
	blake2b "github.com/minio/blake2b-simd"
)

// canonical serializes values deterministically: map keys are sorted so
// that equal values always produce equal bytes.
var canonical = jsoniter.Config{
	EscapeHTML:  true,
	SortMapKeys: true,
}.Froze()

type chunkInput struct {
	part       int
	partBuffer []byte
	lastChunk  bool
	leafSize   uint32
}

type chunkOutput struct {
	digest []byte
	part   int
	err    error
}

// Option modifies the defaults of a Maker
type Option func(*Maker)

// LeafSize sets the chunk size for the tree hash
func LeafSize(sz int64) Option {
	return func(m *Maker) {
		m.leafSize = uint32(sz)
	}
}

// NumberOfWorkers sets the parallelism of chunk hashing
func NumberOfWorkers(no int) Option {
	return func(m *Maker) {
		m.numberOfWorkers = no
	}
}

// New creates a Maker with sensible defaults
func New(opts ...Option) *Maker {
	m := &Maker{
		leafSize:        uint32(5 * units.MB),
		numberOfWorkers: runtime.NumCPU(),
	}

	for _, apply := range opts {
		apply(m)
	}
	return m
}

// Maker computes blake2b tree hashes over canonically serialized values.
// Leaf and root digests are full-width blake2b, so keys are always
// KeySize bytes.
type Maker struct {
	leafSize        uint32
	numberOfWorkers int
}

// Of fingerprints a value by hashing its canonical serialization
func (m *Maker) Of(v interface{}) (Key, error) {
	data, err := canonical.Marshal(v)
	if err != nil {
		return Key{}, err
	}
	return m.Reader(bytes.NewReader(data))
}

// Reader fingerprints the bytes of a stream
func (m *Maker) Reader(r io.Reader) (Key, error) {
	var wg sync.WaitGroup
	chunks := make(chan chunkInput)
	results := make(chan chunkOutput)

	for i := 0; i < m.numberOfWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.processChunk(chunks, results)
		}()
	}

	readErrC := make(chan error, 1)
	go func() {
		defer close(chunks)
		// one chunk of lookahead, so the last chunk can be flagged
		// before the stream length is known
		var prev []byte
		havePrev := false
		for part := 0; ; {
			partBuffer := make([]byte, m.leafSize)
			n, e := io.ReadFull(r, partBuffer)
			if e != nil && e != io.EOF && e != io.ErrUnexpectedEOF {
				readErrC <- e
				return
			}
			eof := e == io.EOF || e == io.ErrUnexpectedEOF
			if n > 0 {
				if havePrev {
					chunks <- chunkInput{part: part, partBuffer: prev, leafSize: m.leafSize}
					part++
				}
				prev, havePrev = partBuffer[:n], true
			}
			if eof {
				if !havePrev {
					// empty stream still hashes a single empty leaf
					prev = []byte{}
				}
				chunks <- chunkInput{part: part, partBuffer: prev, lastChunk: true, leafSize: m.leafSize}
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// digests keyed by chunk number, the total count is unknown upfront
	var firstErr error
	digestHash := make(map[int][]byte)
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		digestHash[res.part] = res.digest
	}
	select {
	case e := <-readErrC:
		return Key{}, e
	default:
	}
	if firstErr != nil {
		return Key{}, firstErr
	}

	// Concatenate digests of chunks
	sz := blake2b.Size
	b := make([]byte, len(digestHash)*sz)
	for index, val := range digestHash {
		offset := sz * index
		copy(b[offset:offset+sz], val)
	}

	rootBlake, err := blake2b.New(&blake2b.Config{
		Size: blake2b.Size,
		Tree: &blake2b.Tree{
			Fanout:        0,
			MaxDepth:      2,
			LeafSize:      m.leafSize,
			NodeOffset:    0,
			NodeDepth:     1,
			InnerHashSize: blake2b.Size,
			IsLastNode:    true,
		},
	})
	if err != nil {
		return Key{}, err
	}

	rootBlake.Reset()
	if _, err = rootBlake.Write(b); err != nil {
		return Key{}, err
	}
	return NewKey(rootBlake.Sum(nil))
}

// Worker routine for computing hash for a chunk
func (m *Maker) processChunk(rx <-chan chunkInput, tx chan<- chunkOutput) {
	for c := range rx {
		blake, err := blake2b.New(&blake2b.Config{
			Size: blake2b.Size,
			Tree: &blake2b.Tree{
				Fanout:        0,
				MaxDepth:      2,
				LeafSize:      c.leafSize,
				NodeOffset:    uint64(c.part),
				NodeDepth:     0,
				InnerHashSize: blake2b.Size,
				IsLastNode:    c.lastChunk,
			},
		})
		if err != nil {
			tx <- chunkOutput{part: c.part, err: err}
			continue
		}

		blake.Reset()
		if _, err = blake.Write(c.partBuffer); err != nil {
			tx <- chunkOutput{part: c.part, err: err}
			continue
		}
		tx <- chunkOutput{digest: blake.Sum(nil), part: c.part}
	}
}
