package layout

// Target describes the pointer properties of the compilation target.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
	}
}

// Host is the target `@size_of` answers for when nothing else is configured.
func Host() Target { return X86_64LinuxGNU() }
