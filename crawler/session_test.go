package crawler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fioncat/txtcrawl/types"
)

type testNode struct {
	isDir    bool
	data     []byte
	children []string
}

// testTree is an in-memory remote tree. It is read-only once built, so
// sessions of different partitions can share it.
type testTree struct {
	nodes map[string]*testNode

	enterErrs map[string]error
	listErrs  map[string]error
	fetchErrs map[string]error
}

func newTestTree(files map[string]string, dirs ...string) *testTree {
	t := &testTree{
		nodes:     map[string]*testNode{"/": {isDir: true}},
		enterErrs: make(map[string]error),
		listErrs:  make(map[string]error),
		fetchErrs: make(map[string]error),
	}
	for _, dir := range dirs {
		t.ensureDir(types.ParseRemotePath(dir))
	}
	for path, content := range files {
		p := types.ParseRemotePath(path)
		parent := t.ensureDir(p.Parent())
		parent.children = append(parent.children, p.Base())
		t.nodes[p.String()] = &testNode{data: []byte(content)}
	}
	for _, node := range t.nodes {
		sort.Strings(node.children)
	}
	return t
}

func (t *testTree) ensureDir(p types.RemotePath) *testNode {
	if node, ok := t.nodes[p.String()]; ok {
		return node
	}
	node := &testNode{isDir: true}
	t.nodes[p.String()] = node
	if p.Depth() > 0 {
		parent := t.ensureDir(p.Parent())
		parent.children = append(parent.children, p.Base())
	}
	return node
}

func (t *testTree) session() *testSession {
	return &testSession{tree: t, cwd: "/"}
}

type testSession struct {
	tree *testTree

	cwd    string
	closed bool

	entered []string
}

func (s *testSession) EnterDirectory(path types.RemotePath) error {
	target := path.String()
	s.entered = append(s.entered, target)
	if err := s.tree.enterErrs[target]; err != nil {
		return err
	}
	node, ok := s.tree.nodes[target]
	if !ok || !node.isDir {
		return fmt.Errorf("enter %q: %w", target, types.ErrNotADirectory)
	}
	s.cwd = target
	return nil
}

func (s *testSession) ListChildren(path types.RemotePath) ([]string, error) {
	target := path.String()
	if target != s.cwd {
		return nil, fmt.Errorf("list %q while the current location is %q", target, s.cwd)
	}
	if err := s.tree.listErrs[target]; err != nil {
		return nil, err
	}
	node := s.tree.nodes[target]
	names := make([]string, len(node.children))
	copy(names, node.children)
	return names, nil
}

func (s *testSession) FetchFile(dir types.RemotePath, name string) ([]byte, error) {
	target := dir.Join(name).String()
	if err := s.tree.fetchErrs[target]; err != nil {
		return nil, err
	}
	node, ok := s.tree.nodes[target]
	if !ok || node.isDir {
		return nil, &types.RemoteError{Op: "retrieve", Path: target, Err: errors.New("no such file")}
	}
	data := make([]byte, len(node.data))
	copy(data, node.data)
	return data, nil
}

func (s *testSession) Close() error {
	s.closed = true
	return nil
}

type testDialer struct {
	tree *testTree

	// failOn makes the n-th dial (1-based) fail.
	failOn int64
	dials  atomic.Int64

	mu       sync.Mutex
	sessions []*testSession
}

func (d *testDialer) Dial(ctx context.Context) (types.Session, error) {
	n := d.dials.Add(1)
	if n == d.failOn {
		return nil, &types.ConnectionError{Server: "test", Err: errors.New("connection refused")}
	}
	s := d.tree.session()
	d.mu.Lock()
	d.sessions = append(d.sessions, s)
	d.mu.Unlock()
	return s, nil
}

// testSink records appended documents.
type testSink struct {
	mu   sync.Mutex
	docs []*types.Document

	failures map[string]error
}

func (s *testSink) Append(doc *types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[doc.Path.String()]; err != nil {
		return err
	}
	s.docs = append(s.docs, doc)
	return nil
}

func (s *testSink) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, len(s.docs))
	for i, doc := range s.docs {
		paths[i] = doc.Path.String()
	}
	return paths
}
