// Package tui draws the converter form in a terminal.
package tui

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/dalfonso89/currency-converter/internal/converter"
	"github.com/dalfonso89/currency-converter/internal/logger"
)

const (
	title       = "Konversi Dolar ke Rupiah"
	inputLabel  = "Masukkan jumlah Dolar "
	buttonLabel = "Konversi"
)

// Screen is the converter form: one input, one button and a result line.
// The converter.Form is the only owner of state; widgets redraw from it.
type Screen struct {
	form *converter.Form

	root   *tview.Flex
	fields *tview.Form
	amount *tview.InputField
	result *tview.TextView

	unsubscribe func()
}

// NewScreen builds the widget tree for form
func NewScreen(form *converter.Form) *Screen {
	screen := &Screen{form: form}

	heading := tview.NewTextView().
		SetText(title).
		SetTextAlign(tview.AlignCenter)

	screen.amount = tview.NewInputField().
		SetLabel(inputLabel).
		SetText(form.Input()).
		SetFieldWidth(24).
		SetAcceptanceFunc(acceptAmount).
		SetChangedFunc(func(text string) {
			form.Edit(text)
		})

	screen.fields = tview.NewForm().
		AddFormItem(screen.amount).
		AddButton(buttonLabel, screen.Convert)
	screen.fields.SetBorder(true)

	screen.result = tview.NewTextView().
		SetDynamicColors(false).
		SetTextAlign(tview.AlignCenter)

	screen.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(heading, 2, 0, false).
		AddItem(screen.fields, 7, 0, true).
		AddItem(screen.result, 2, 0, false).
		AddItem(nil, 0, 1, false)

	screen.unsubscribe = form.Subscribe(screen.render)
	screen.render(form.State())

	return screen
}

// acceptAmount rejects keystrokes that would break the entry pattern
func acceptAmount(textToCheck string, _ rune) bool {
	return converter.Accepts(textToCheck)
}

// Root returns the top of the widget tree
func (screen *Screen) Root() tview.Primitive {
	return screen.root
}

// Convert is what the button does
func (screen *Screen) Convert() {
	screen.form.Convert()
}

// ResultText returns what the result line shows
func (screen *Screen) ResultText() string {
	return screen.result.GetText(true)
}

// Close detaches the screen from its form
func (screen *Screen) Close() {
	screen.unsubscribe()
}

// render redraws both widgets from state. Echoing the field's own text back is
// skipped, so the changed func only fires for edits made outside the field.
func (screen *Screen) render(state converter.FormState) {
	if screen.amount.GetText() != state.Input {
		screen.amount.SetText(state.Input)
	}
	screen.result.SetText(state.Result)
}

// Run shows the form until Esc, Ctrl-C or ctx is done
func Run(ctx context.Context, form *converter.Form, log *logger.Logger) error {
	app := tview.NewApplication()
	screen := NewScreen(form)
	defer screen.Close()

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			app.Stop()
			return nil
		}
		return event
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			app.Stop()
		case <-done:
		}
	}()

	log.Info("Starting terminal form")
	if err := app.SetRoot(screen.Root(), true).EnableMouse(true).Run(); err != nil {
		log.Errorf("Terminal form failed: %v", err)
		return err
	}
	log.WithField("result", form.Result()).Info("Terminal form closed")
	return nil
}
