// Package injector describes the abstract input commands the bridge issues
// against the desktop chat client, and the collaborators that execute them.
package injector

import (
	"fmt"
	"strconv"
)

// Op is the kind of an input command.
type Op int

const (
	// OpOpen brings the chat with the given display name to the front.
	OpOpen Op = iota
	// OpFocus puts the caret into the message input box.
	OpFocus
	OpInputText
	OpInputAt
	OpInputImage
	OpInputFile
	OpSubmit
	// OpReset closes the chat and returns the UI to a neutral state.
	OpReset
)

var opNames = [...]string{
	OpOpen:       "open",
	OpFocus:      "focus",
	OpInputText:  "input_text",
	OpInputAt:    "input_at",
	OpInputImage: "input_image",
	OpInputFile:  "input_file",
	OpSubmit:     "submit",
	OpReset:      "reset",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Command is one abstract input action.
type Command struct {
	Op Op
	// Text is the chat name for OpOpen, the text for OpInputText and the
	// display name for OpInputAt.
	Text string
	// Source references the image or file for OpInputImage and OpInputFile.
	Source string
	// Name is the display file name for OpInputFile.
	Name string
}

func Open(chat string) Command { return Command{Op: OpOpen, Text: chat} }
func Focus() Command { return Command{Op: OpFocus} }
func InputText(text string) Command { return Command{Op: OpInputText, Text: text} }
func InputAt(displayName string) Command { return Command{Op: OpInputAt, Text: displayName} }
func InputImage(source string) Command { return Command{Op: OpInputImage, Source: source} }
func InputFile(source, name string) Command {
	return Command{Op: OpInputFile, Source: source, Name: name}
}
func Submit() Command { return Command{Op: OpSubmit} }
func Reset() Command { return Command{Op: OpReset} }

// Args returns the operands of c in a fixed order, for logging and for
// injectors that pass commands to an external program.
func (c Command) Args() []string {
	switch c.Op {
	case OpOpen, OpInputText, OpInputAt:
		return []string{c.Text}
	case OpInputImage:
		return []string{c.Source}
	case OpInputFile:
		return []string{c.Source, c.Name}
	default:
		return nil
	}
}

func (c Command) String() string {
	args := c.Args()
	if len(args) == 0 {
		return c.Op.String()
	}
	return fmt.Sprintf("%s%q", c.Op, args)
}
