package converter

import "sync"

// FormState is what a screen draws: the input text and the result line
type FormState struct {
	Input  string `json:"input"`
	Result string `json:"result"`
}

// Form owns the input and result of one converter screen. Observers are told
// about every state change and redraw from the snapshot they receive.
type Form struct {
	engine *Engine

	mu           sync.Mutex
	input        string
	result       string
	observers    map[int]func(FormState)
	nextObserver int
}

// NewForm creates an empty form bound to engine
func NewForm(engine *Engine) *Form {
	return &Form{
		engine:    engine,
		observers: make(map[int]func(FormState)),
	}
}

// Input returns the accepted input text
func (form *Form) Input() string {
	form.mu.Lock()
	defer form.mu.Unlock()
	return form.input
}

// Result returns the last computed result, "" before the first Convert
func (form *Form) Result() string {
	form.mu.Lock()
	defer form.mu.Unlock()
	return form.result
}

// State returns a snapshot of the form
func (form *Form) State() FormState {
	form.mu.Lock()
	defer form.mu.Unlock()
	return FormState{Input: form.input, Result: form.result}
}

// Edit proposes new input text. Rejected edits leave the input unchanged.
func (form *Form) Edit(proposed string) bool {
	form.mu.Lock()
	next, accepted := Filter(form.input, proposed)
	changed := next != form.input
	form.input = next
	state, observers := form.snapshotLocked()
	form.mu.Unlock()

	if changed {
		notify(observers, state)
	}
	return accepted
}

// Convert recomputes the result from the current input
func (form *Form) Convert() string {
	form.mu.Lock()
	form.result = form.engine.Result(form.input)
	result := form.result
	state, observers := form.snapshotLocked()
	form.mu.Unlock()

	notify(observers, state)
	return result
}

// Reset clears input and result
func (form *Form) Reset() {
	form.mu.Lock()
	form.input = ""
	form.result = ""
	state, observers := form.snapshotLocked()
	form.mu.Unlock()

	notify(observers, state)
}

// Subscribe registers an observer and returns a func that removes it
func (form *Form) Subscribe(observer func(FormState)) (cancel func()) {
	form.mu.Lock()
	id := form.nextObserver
	form.nextObserver++
	form.observers[id] = observer
	form.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			form.mu.Lock()
			delete(form.observers, id)
			form.mu.Unlock()
		})
	}
}

func (form *Form) snapshotLocked() (FormState, []func(FormState)) {
	observers := make([]func(FormState), 0, len(form.observers))
	for _, observer := range form.observers {
		observers = append(observers, observer)
	}
	return FormState{Input: form.input, Result: form.result}, observers
}

func notify(observers []func(FormState), state FormState) {
	for _, observer := range observers {
		observer(state)
	}
}
