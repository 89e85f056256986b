package host

// AudioBackend, NavigatorBackend, and RenderBackend are abstract capability
// surfaces the VMs dispatch through without knowing their implementation
// (design note: "Dynamic dispatch over backend surfaces"). Real
// implementations (actual audio mixing, actual browser navigation, actual
// rendering) live outside this module's scope; the Null* variants below are
// the in-scope stand-ins used by tests, matching NullAudioBackend /
// NullNavigatorBackend / NullRenderer in the reference runtime's
// test_utils.rs.
type AudioBackend interface {
	// PlaySound starts playback of a named embedded sound; returns an
	// opaque handle the script can later use to stop it.
	PlaySound(name string) (handle int, err error)
	StopSound(handle int)
}

type NavigatorBackend interface {
	// Navigate requests the host open url in the named frame/window.
	Navigate(url string, target string) error
}

type RenderBackend interface {
	// FrameRendered is invoked by the host once a frame's display list has
	// been rasterized; the VM does not render anything itself.
	FrameRendered()
}

// NullAudioBackend discards all playback requests.
type NullAudioBackend struct{}

func NewNullAudioBackend() *NullAudioBackend { return &NullAudioBackend{} }

func (*NullAudioBackend) PlaySound(string) (int, error) { return 0, nil }
func (*NullAudioBackend) StopSound(int)                 {}

// NullNavigatorBackend discards all navigation requests.
type NullNavigatorBackend struct{}

func NewNullNavigatorBackend() *NullNavigatorBackend { return &NullNavigatorBackend{} }

func (*NullNavigatorBackend) Navigate(string, string) error { return nil }

// NullRenderer acknowledges frames without drawing anything.
type NullRenderer struct{}

func NewNullRenderer() *NullRenderer { return &NullRenderer{} }

func (*NullRenderer) FrameRendered() {}
