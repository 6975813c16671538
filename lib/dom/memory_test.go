package dom

import (
	"errors"
	"strings"
	"testing"
)

const formHTML = `
<div id="test">
	<input type="text" id="textInput" value="hello" />
	<input type="radio" id="r1" name="choice" checked />
	<input type="radio" id="r2" name="choice" />
	<input type="checkbox" id="checkboxInput" />
	<textarea id="textarea">some text</textarea>
	<select id="select">
		<option value="1">1</option>
		<option value="2">2</option>
	</select>
	<p id="foobar"></p>
</div>`

func TestElementByID(t *testing.T) {
	d := MustParse(formHTML)

	tests := []struct {
		id  string
		tag string
	}{
		{"textInput", "input"},
		{"textarea", "textarea"},
		{"select", "select"},
		{"foobar", "p"},
	}
	for _, tt := range tests {
		el := d.ElementByID(tt.id)
		if el == nil {
			t.Fatalf("ElementByID(%q) = nil", tt.id)
		}
		if el.TagName() != tt.tag {
			t.Errorf("TagName() = %q, want %q", el.TagName(), tt.tag)
		}
		if el.ID() != tt.id {
			t.Errorf("ID() = %q, want %q", el.ID(), tt.id)
		}
	}

	if d.ElementByID("missing") != nil {
		t.Error("ElementByID(missing) should be nil")
	}
	if d.ElementByID("") != nil {
		t.Error("ElementByID(\"\") should be nil")
	}
}

func TestValues(t *testing.T) {
	d := MustParse(formHTML)

	text := d.ElementByID("textInput")
	if got := text.Value(); got != "hello" {
		t.Errorf("text Value() = %q, want hello", got)
	}
	text.SetValue("foo")
	if got := text.Value(); got != "foo" {
		t.Errorf("text Value() after set = %q, want foo", got)
	}

	ta := d.ElementByID("textarea")
	if got := ta.Value(); got != "some text" {
		t.Errorf("textarea Value() = %q", got)
	}
	ta.SetValue("other")
	if got := ta.Value(); got != "other" {
		t.Errorf("textarea Value() after set = %q", got)
	}

	sel := d.ElementByID("select")
	if got := sel.Value(); got != "1" {
		t.Errorf("select Value() = %q, want first option", got)
	}
	sel.SetValue("2")
	if got := sel.Value(); got != "2" {
		t.Errorf("select Value() after set = %q, want 2", got)
	}
}

func TestRadioGroupExclusive(t *testing.T) {
	d := MustParse(formHTML)
	r1, r2 := d.ElementByID("r1"), d.ElementByID("r2")

	if !r1.Checked() || r2.Checked() {
		t.Fatalf("initial state r1=%v r2=%v", r1.Checked(), r2.Checked())
	}
	r2.SetChecked(true)
	if r1.Checked() || !r2.Checked() {
		t.Errorf("after check r2: r1=%v r2=%v", r1.Checked(), r2.Checked())
	}

	group := d.ElementsByName("choice")
	if len(group) != 2 || group[0].ID() != "r1" || group[1].ID() != "r2" {
		t.Errorf("ElementsByName(choice) returned %d elements", len(group))
	}
}

func TestDispatch(t *testing.T) {
	d := MustParse(formHTML)

	var got []string
	remove := d.AddEventListener(EventInput, func(ev *Event) {
		got = append(got, ev.Type+":"+ev.Target.ID())
	})
	d.AddEventListener(EventChange, func(ev *Event) {
		got = append(got, ev.Type+":"+ev.Target.ID())
	})

	if err := d.Dispatch(EventInput, "textInput"); err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(EventChange, "select"); err != nil {
		t.Fatal(err)
	}
	remove()
	if err := d.Dispatch(EventInput, "textInput"); err != nil {
		t.Fatal(err)
	}

	want := []string{"input:textInput", "change:select"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", got, want)
	}

	if err := d.Dispatch(EventInput, "missing"); !errors.Is(err, ErrNoElement) {
		t.Errorf("Dispatch(missing) error = %v, want ErrNoElement", err)
	}
}

func TestSetInnerHTML(t *testing.T) {
	d := MustParse(formHTML)

	if err := d.ElementByID("foobar").SetInnerHTML(`<b>bold</b> text`); err != nil {
		t.Fatal(err)
	}
	got, err := d.InnerHTML("foobar")
	if err != nil {
		t.Fatal(err)
	}
	if got != "<b>bold</b> text" {
		t.Errorf("InnerHTML = %q", got)
	}
	if !strings.Contains(d.String(), `<p id="foobar"><b>bold</b> text</p>`) {
		t.Errorf("rendered document missing new content:\n%s", d.String())
	}
}
