package keywriter

import (
	"errors"
	"io/fs"
	"slices"
	"strings"
	"sync"

	"github.com/joshuapare/regset/internal/regpath"
	"github.com/joshuapare/regset/pkg/types"
)

var errHandleClosed = errors.New("registry handle already closed")

// Memory is an in-process Registry. Key and value names are matched
// case-insensitively, as on Windows. Keys marked with Deny behave like keys
// whose ACL grants the caller read access only.
type Memory struct {
	mu      sync.Mutex
	roots   map[types.Hive]*memNode
	handles int
}

type memNode struct {
	name     string
	denied   bool
	children map[string]*memNode
	values   map[string]types.Value
}

func newMemNode(name string) *memNode {
	return &memNode{name: name, children: map[string]*memNode{}, values: map[string]types.Value{}}
}

// NewMemory returns an empty registry with all five hives present.
func NewMemory() *Memory {
	m := &Memory{roots: make(map[types.Hive]*memNode, len(types.Hives))}
	for _, h := range types.Hives {
		m.roots[h] = newMemNode(h.String())
	}
	return m
}

// OpenHive implements Registry.
func (m *Memory) OpenHive(h types.Hive) (Hive, error) {
	if !h.Valid() {
		return nil, types.Newf(types.ErrKindInvalidArgument, "unknown hive %s", h)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles++
	return &memHive{m: m, id: h}, nil
}

// Deny creates path under h if needed and marks it read-only: subkeys can
// no longer be created beneath it and it cannot be opened for writing.
// Existing subkeys keep their own permissions. Invalid hives are ignored.
func (m *Memory) Deny(h types.Hive, path string) {
	if !h.Valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	node := m.roots[h]
	for _, seg := range segments(path) {
		child, ok := node.children[strings.ToLower(seg)]
		if !ok {
			child = newMemNode(seg)
			node.children[strings.ToLower(seg)] = child
		}
		node = child
	}
	node.denied = true
}

// Value returns the value stored under h\path, if any.
func (m *Memory) Value(h types.Hive, path, name string) (types.Value, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	node := m.lookup(h, path)
	if node == nil {
		return nil, false
	}
	v, ok := node.values[strings.ToLower(name)]
	return v, ok
}

// KeyExists reports whether h\path exists.
func (m *Memory) KeyExists(h types.Hive, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(h, path) != nil
}

// OpenHandles returns the number of hive and key handles not yet closed.
func (m *Memory) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handles
}

func (m *Memory) lookup(h types.Hive, path string) *memNode {
	node, ok := m.roots[h]
	if !ok {
		return nil
	}
	for _, seg := range segments(path) {
		node, ok = node.children[strings.ToLower(seg)]
		if !ok {
			return nil
		}
	}
	return node
}

func (m *Memory) release(closed *bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if *closed {
		return errHandleClosed
	}
	*closed = true
	m.handles--
	return nil
}

func segments(path string) []string {
	if path = regpath.Clean(path); path == "" {
		return nil
	}
	return strings.Split(path, regpath.Separator)
}

type memHive struct {
	m      *Memory
	id     types.Hive
	closed bool
}

func (h *memHive) ID() types.Hive { return h.id }

func (h *memHive) CreateKey(path string) (Key, error) {
	m := h.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.closed {
		return nil, errHandleClosed
	}

	node := m.roots[h.id]
	walked := h.id.String()
	for _, seg := range segments(path) {
		child, ok := node.children[strings.ToLower(seg)]
		if !ok {
			if node.denied {
				return nil, &fs.PathError{Op: "create", Path: walked + regpath.Separator + seg, Err: fs.ErrPermission}
			}
			child = newMemNode(seg)
			node.children[strings.ToLower(seg)] = child
		}
		node = child
		walked += regpath.Separator + seg
	}
	if node.denied {
		return nil, &fs.PathError{Op: "open", Path: walked, Err: fs.ErrPermission}
	}
	m.handles++
	return &memKey{m: m, node: node, writable: true}, nil
}

func (h *memHive) OpenKey(path string) (Key, error) {
	m := h.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.closed {
		return nil, errHandleClosed
	}
	node := m.lookup(h.id, path)
	if node == nil {
		return nil, &fs.PathError{Op: "open", Path: regpath.Join(h.id, regpath.Clean(path)), Err: fs.ErrNotExist}
	}
	m.handles++
	return &memKey{m: m, node: node}, nil
}

func (h *memHive) Close() error { return h.m.release(&h.closed) }

type memKey struct {
	m        *Memory
	node     *memNode
	writable bool
	closed   bool
}

func (k *memKey) SetValue(name string, v types.Value) error {
	k.m.mu.Lock()
	defer k.m.mu.Unlock()
	if k.closed {
		return errHandleClosed
	}
	if !k.writable {
		return &fs.PathError{Op: "set", Path: k.node.name, Err: fs.ErrPermission}
	}
	stored, err := cloneValue(v)
	if err != nil {
		return err
	}
	k.node.values[strings.ToLower(name)] = stored
	return nil
}

func (k *memKey) Close() error { return k.m.release(&k.closed) }

// cloneValue copies slice-backed values so later caller mutation does not
// leak into the registry.
func cloneValue(v types.Value) (types.Value, error) {
	switch v := v.(type) {
	case types.String, types.ExpandString, types.DWord, types.QWord:
		return v, nil
	case types.MultiString:
		return slices.Clone(v), nil
	case types.Binary:
		return slices.Clone(v), nil
	default:
		return nil, types.Newf(types.ErrKindInvalidArgument, "unsupported value type %T", v)
	}
}
