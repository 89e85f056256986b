package host

// DisplayObject is the narrow interface the VMs need from the display-list
// timeline, which is an external collaborator (out of scope:
// "the display list / movie-clip timeline advance loop"). Only the surface
// the scripting core actually touches is modeled here.
type DisplayObject interface {
	// Name returns the instance name used for target-path resolution.
	Name() string
	// IsMovieClip distinguishes MovieClip display objects for `typeof`.
	IsMovieClip() bool
}

// StubClip is a minimal DisplayObject used by tests and by bootstrapping
// activations that need *some* root clip to exist (Activation::from_nothing
// in the reference runtime always has a root MovieClip backing `this`).
type StubClip struct {
	name string
}

// NewStubClip constructs a named stub clip.
func NewStubClip(name string) *StubClip { return &StubClip{name: name} }

func (c *StubClip) Name() string      { return c.name }
func (c *StubClip) IsMovieClip() bool { return true }
