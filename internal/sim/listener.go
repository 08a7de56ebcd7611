package sim

// SystemListener observes every frame of an engine. Callbacks run on the
// frame source goroutine.
type SystemListener interface {
	OnBeforeIntegrate(e *Engine)
	OnAfterIntegrate(e *Engine)
}

// SystemListenerFuncs adapts plain functions to SystemListener. Register it
// by pointer.
type SystemListenerFuncs struct {
	BeforeIntegrate func(*Engine)
	AfterIntegrate  func(*Engine)
}

func (f *SystemListenerFuncs) OnBeforeIntegrate(e *Engine) {
	if f.BeforeIntegrate != nil {
		f.BeforeIntegrate(e)
	}
}

func (f *SystemListenerFuncs) OnAfterIntegrate(e *Engine) {
	if f.AfterIntegrate != nil {
		f.AfterIntegrate(e)
	}
}
