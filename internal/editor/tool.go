package editor

import (
	"fmt"
	"strings"
)

// Tool is the active editing tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolCrop
	ToolText
	ToolRect
	ToolCircle
	ToolLine
	ToolArrow
	ToolFreehand
)

var toolNames = map[Tool]string{
	ToolSelect:   "select",
	ToolCrop:     "crop",
	ToolText:     "text",
	ToolRect:     "rect",
	ToolCircle:   "circle",
	ToolLine:     "line",
	ToolArrow:    "arrow",
	ToolFreehand: "freehand",
}

func (t Tool) String() string {
	if s, ok := toolNames[t]; ok {
		return s
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool maps a name such as "crop" or "draw" to a Tool.
func ParseTool(s string) (Tool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "move", "pointer":
		return ToolSelect, nil
	case "draw", "pen":
		return ToolFreehand, nil
	case "rectangle":
		return ToolRect, nil
	}
	for t, name := range toolNames {
		if name == s {
			return t, nil
		}
	}
	return ToolSelect, fmt.Errorf("unknown tool %q", s)
}

// drawsShape reports whether dragging with t creates a two-point shape.
func (t Tool) drawsShape() bool {
	switch t {
	case ToolRect, ToolCircle, ToolLine, ToolArrow:
		return true
	}
	return false
}

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches tools. Entering the crop tool without an area selects
// the whole image; leaving it abandons the area without touching pixels.
func (e *Editor) SetTool(t Tool) {
	if t == e.tool {
		return
	}
	if e.tool == ToolCrop {
		e.crop.Reset()
	}
	e.pending = nil
	e.tool = t
	if t == ToolCrop {
		e.selected = ""
		if _, ok := e.crop.Area(); !ok {
			e.crop.SelectAll()
		}
	}
}
