package sizeof

import (
	"reflect"
	"time"

	"github.com/refscope/refscope/pkg/convert"
	"github.com/refscope/refscope/pkg/metrics"
	"github.com/refscope/refscope/pkg/model"
	"github.com/refscope/refscope/pkg/sizeof/status"

	"go.uber.org/zap"
)

const (
	// approximated runtime geometry for blocks reflect cannot measure
	hmapOverhead        = 48 // runtime.hmap header
	bucketEntryOverhead = 16 // amortized tophash + overflow pointers per entry
)

// stringType keys visited string backing arrays, whatever the enclosing value
var stringType = reflect.TypeOf("")

// Scanner computes deep sizes of Go values
type Scanner struct {
	l           *zap.Logger
	maxDepth    int
	countShared bool
	m           *M

	metrics.Enable
	_ struct{}
}

// New creates a scanner, honoring options
func New(opts ...Option) *Scanner {
	s := &Scanner{
		l: zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	if s.MetricsEnabled() {
		s.m = s.EnsureMetrics("sizeof", &M{}).(*M)
	}
	return s
}

// Of reports the memory retained by the root values.
//
// All roots share one visited set: memory reachable from several roots is
// counted once, so Of(a, b) reports the size of a and b together rather
// than the sum of their individual sizes.
func (s *Scanner) Of(roots ...interface{}) (*model.SizeReport, error) {
	if len(roots) == 0 {
		return nil, status.ErrNoRoots
	}
	if s.maxDepth < 0 {
		return nil, status.ErrInvalidDepth
	}

	t0 := time.Now()
	st := &scanState{
		seen:        make(map[visitKey]struct{}),
		byKind:      make(map[string]int64),
		maxDepth:    s.maxDepth,
		countShared: s.countShared,
	}

	var total int64
	for _, root := range roots {
		rv := reflect.ValueOf(root)
		st.nodes++
		if !rv.IsValid() {
			// a nil root retains the empty interface words only
			total += st.account(reflect.Interface, int64(emptyInterfaceType.Size()))
			continue
		}
		total += st.account(rv.Kind(), int64(rv.Type().Size()))
		total += st.referenced(rv, 1)
	}

	r := &model.SizeReport{
		TotalBytes:  total,
		SharedBytes: st.shared,
		Nodes:       st.nodes,
		MaxDepth:    st.deepest,
		Truncated:   st.truncated,
		ByKind:      st.byKind,
		Timestamp:   time.Now(),
	}
	s.l.Debug("size scan done",
		zap.Int64("bytes", r.TotalBytes),
		zap.Int64("nodes", r.Nodes),
		zap.Bool("truncated", r.Truncated),
	)
	if s.MetricsEnabled() {
		s.m.ScanDone(t0, r.TotalBytes)
	}
	return r, nil
}

// Compare reports the sizes of a and b taken individually and together,
// exposing the bytes they share.
func (s *Scanner) Compare(a, b interface{}) (*model.Comparison, error) {
	ra, err := s.Of(a)
	if err != nil {
		return nil, err
	}
	rb, err := s.Of(b)
	if err != nil {
		return nil, err
	}
	together, err := s.Of(a, b)
	if err != nil {
		return nil, err
	}
	return &model.Comparison{
		SizeA:       ra.TotalBytes,
		SizeB:       rb.TotalBytes,
		Together:    together.TotalBytes,
		SharedBytes: ra.TotalBytes + rb.TotalBytes - together.TotalBytes,
		Timestamp:   time.Now(),
	}, nil
}

var emptyInterfaceType = reflect.TypeOf((*interface{})(nil)).Elem()

// visitKey identifies a block of memory. The type is part of the key:
// a struct and its first field share an address but not a layout.
type visitKey struct {
	addr uintptr
	t    reflect.Type
}

type scanState struct {
	seen        map[visitKey]struct{}
	byKind      map[string]int64
	shared      int64
	nodes       int64
	deepest     int
	truncated   bool
	maxDepth    int
	countShared bool
}

// visit marks a block, reporting whether this is its first sighting
func (st *scanState) visit(addr uintptr, t reflect.Type) bool {
	k := visitKey{addr: addr, t: t}
	if _, ok := st.seen[k]; ok {
		return false
	}
	st.seen[k] = struct{}{}
	return true
}

func (st *scanState) account(k reflect.Kind, n int64) int64 {
	st.byKind[k.String()] += n
	return n
}

// sharedHit records a revisited block. In countShared mode the block's own
// bytes are accounted again, but it is never walked a second time.
func (st *scanState) sharedHit(k reflect.Kind, block int64) int64 {
	st.shared += block
	if st.countShared {
		return st.account(k, block)
	}
	return 0
}

// referenced returns the bytes reachable from v beyond its inline size
func (st *scanState) referenced(v reflect.Value, depth int) (n int64) {
	if depth > st.deepest {
		st.deepest = depth
	}
	if st.maxDepth > 0 && depth > st.maxDepth {
		st.truncated = true
		return 0
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return 0
		}
		et := v.Type().Elem()
		block := int64(et.Size())
		if !st.visit(v.Pointer(), et) {
			return st.sharedHit(et.Kind(), block)
		}
		st.nodes++
		n = st.account(et.Kind(), block)
		n += st.referenced(v.Elem(), depth+1)

	case reflect.Interface:
		el := v.Elem()
		if !el.IsValid() {
			return 0
		}
		if isPointerShaped(el.Kind()) {
			// the value lives in the interface data word itself
			return st.referenced(el, depth+1)
		}
		// non-pointer values are boxed by the runtime; the box cannot be
		// addressed through reflect, so boxes are not deduplicated
		st.nodes++
		n = st.account(el.Kind(), int64(el.Type().Size()))
		n += st.referenced(el, depth+1)

	case reflect.String:
		block := int64(v.Len())
		if block == 0 {
			return 0
		}
		if !st.visit(convert.StringData(v.String()), stringType) {
			return st.sharedHit(reflect.String, block)
		}
		st.nodes++
		n = st.account(reflect.String, block)

	case reflect.Slice:
		if v.IsNil() {
			return 0
		}
		et := v.Type().Elem()
		block := int64(v.Cap()) * int64(et.Size())
		if !st.visit(v.Pointer(), v.Type()) {
			return st.sharedHit(reflect.Slice, block)
		}
		st.nodes++
		n = st.account(reflect.Slice, block)
		if hasPointers(et) {
			for i := 0; i < v.Len(); i++ {
				n += st.referenced(v.Index(i), depth+1)
			}
		}

	case reflect.Array:
		if hasPointers(v.Type().Elem()) {
			for i := 0; i < v.Len(); i++ {
				n += st.referenced(v.Index(i), depth+1)
			}
		}

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Field(i)
			if hasPointers(f.Type()) {
				n += st.referenced(f, depth+1)
			}
		}

	case reflect.Map:
		if v.IsNil() {
			return 0
		}
		kt, et := v.Type().Key(), v.Type().Elem()
		block := hmapOverhead + int64(v.Len())*(int64(kt.Size())+int64(et.Size())+bucketEntryOverhead)
		if !st.visit(v.Pointer(), v.Type()) {
			return st.sharedHit(reflect.Map, block)
		}
		st.nodes++
		n = st.account(reflect.Map, block)
		if hasPointers(kt) || hasPointers(et) {
			iter := v.MapRange()
			for iter.Next() {
				n += st.referenced(iter.Key(), depth+1)
				n += st.referenced(iter.Value(), depth+1)
			}
		}

	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Uintptr:
		// reference words only, already accounted inline
	}
	return n
}

// isPointerShaped tells whether a value of this kind fits the interface data word
func isPointerShaped(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// hasPointers tells whether values of this type may reference further memory
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.String, reflect.Slice, reflect.Map:
		return true
	case reflect.Array:
		return hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
