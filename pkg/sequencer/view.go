package sequencer

import "github.com/goliatone/go-txform/pkg/txstatus"

// DoneLabel replaces the classified label once the latest step is terminal.
const DoneLabel = "OK"

// Progress is the aggregate position of a run.
type Progress struct {
	Current int
	Total   int
}

// View is what the rendering boundary needs to draw the control.
type View struct {
	Label    string
	Display  txstatus.Display
	Progress Progress
	// Status is nil while idle.
	Status    *txstatus.Status
	Idle      bool
	Running   bool
	Done      bool
	Disabled  bool
	Clickable bool
}

// View aggregates the sequencer state for rendering.
func (s *Sequencer) View() View {
	v := View{
		Progress: Progress{Current: s.index, Total: s.plan.Len()},
		Disabled: s.Disabled(),
	}
	if s.current == nil {
		v.Idle = true
		v.Label = s.caption
	} else {
		current := *s.current
		v.Status = &current
		v.Display = txstatus.Classify(current)
		v.Done = current.Done()
		v.Running = !v.Done
		if v.Done {
			v.Label = DoneLabel
		} else {
			v.Label = v.Display.Label
		}
	}
	v.Clickable = !v.Disabled && (v.Idle || v.Done)
	return v
}
