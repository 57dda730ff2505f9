package store

import (
	"log/slog"
	"slices"

	"github.com/ardnew/scopex/index"
)

// Scope pairs an index with the object it resolved to when pushed.
type Scope struct {
	Index *index.Index
	Obj   any
}

// Frame is a relocation of the addressing origin. Its first scope is the
// origin; later scopes are overlays searched before it.
type Frame struct {
	scopes []Scope
}

func newFrame(idx *index.Index, obj any) *Frame {
	return &Frame{scopes: []Scope{{Index: idx, Obj: obj}}}
}

// Index returns the index of the frame origin.
func (f *Frame) Index() *index.Index { return f.scopes[0].Index }

// First returns the origin scope.
func (f *Frame) First() Scope { return f.scopes[0] }

// Last returns the innermost scope.
func (f *Frame) Last() Scope { return f.scopes[len(f.scopes)-1] }

// Len returns the number of scopes.
func (f *Frame) Len() int { return len(f.scopes) }

// Scopes returns a copy of the scopes, outermost first.
func (f *Frame) Scopes() []Scope { return slices.Clone(f.scopes) }

// Objs returns the scope objects, innermost first.
func (f *Frame) Objs() []any {
	objs := make([]any, len(f.scopes))
	for i, s := range f.scopes {
		objs[len(f.scopes)-1-i] = s.Obj
	}

	return objs
}

func (f *Frame) String() string { return `<frame "` + f.Index().String() + `">` }

func (f *Frame) clone() *Frame {
	return &Frame{scopes: slices.Clone(f.scopes)}
}

func (f *Frame) push(s Scope) { f.scopes = append(f.scopes, s) }

func (f *Frame) pop() error {
	if len(f.scopes) <= 1 {
		return ErrStackUnderflow.With(slog.String("stack", "scope"))
	}

	f.scopes[len(f.scopes)-1] = Scope{}
	f.scopes = f.scopes[:len(f.scopes)-1]

	return nil
}

// Stack is the frame stack of a Context. The bottom frame wraps the root.
type Stack struct {
	frames []*Frame
}

func newStack(root any) *Stack {
	return &Stack{frames: []*Frame{newFrame(index.Root, root)}}
}

// Len returns the number of frames.
func (s *Stack) Len() int { return len(s.frames) }

// Current returns the top frame.
func (s *Stack) Current() *Frame { return s.frames[len(s.frames)-1] }

func (s *Stack) push(f *Frame) { s.frames = append(s.frames, f) }

func (s *Stack) pop() error {
	if len(s.frames) <= 1 {
		return ErrStackUnderflow.With(slog.String("stack", "frame"))
	}

	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]

	return nil
}

func (s *Stack) reset() {
	clear(s.frames[1:])
	s.frames = s.frames[:1]
	s.frames[0] = newFrame(index.Root, s.frames[0].First().Obj)
}
