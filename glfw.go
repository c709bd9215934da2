package main

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	defaultWindowWidth  = 1280
	defaultWindowHeight = 720
)

func init() {
	runtime.LockOSThread()
}

// GlfwApp is driven by WithGL on the main thread.
type GlfwApp interface {
	Init(host *GlfwHost) error
	IsRunning() bool
	OnKey(keyName string)
	OnCursorPos(x, y float64)
	OnFramebufferSize(width, height int)
	Update() error
	Close() error
}

// GlfwHost owns the window and runs frame callbacks once per display
// refresh. It is the FrameScheduler of the render loop.
type GlfwHost struct {
	window  *glfw.Window
	pending func()
	fbSize  Size
	winSize Size
	fpsCap  float64
}

func (h *GlfwHost) RequestFrame(fn func()) {
	h.pending = fn
}

func (h *GlfwHost) FramebufferSize() Size {
	return h.fbSize
}

// WindowSize is in screen coordinates, the space cursor positions use.
func (h *GlfwHost) WindowSize() Size {
	return h.winSize
}

func (h *GlfwHost) runFrame() {
	fn := h.pending
	h.pending = nil
	if fn != nil {
		fn()
	}
}

// glfwKeyName maps a key event to the names used by KeyMap. Modifier
// keys on their own have no name.
func glfwKeyName(key glfw.Key, scancode int, mods glfw.ModifierKey) string {
	var keyName string
	switch key {
	case glfw.KeyLeftShift, glfw.KeyLeftControl, glfw.KeyLeftAlt, glfw.KeyLeftSuper:
		return ""
	case glfw.KeyRightShift, glfw.KeyRightControl, glfw.KeyRightAlt, glfw.KeyRightSuper:
		return ""
	case glfw.KeySpace:
		keyName = "Space"
	case glfw.KeyEscape:
		keyName = "Escape"
	case glfw.KeyEnter:
		keyName = "Enter"
	case glfw.KeyTab:
		keyName = "Tab"
	case glfw.KeyBackspace:
		keyName = "Backspace"
	case glfw.KeyRight:
		keyName = "Right"
	case glfw.KeyLeft:
		keyName = "Left"
	case glfw.KeyDown:
		keyName = "Down"
	case glfw.KeyUp:
		keyName = "Up"
	case glfw.KeyHome:
		keyName = "Home"
	case glfw.KeyEnd:
		keyName = "End"
	default:
		if key >= glfw.Key0 && key <= glfw.Key9 {
			// Shifted digits are reported by position, not by the
			// layout's symbol.
			keyName = string(rune('0' + (key - glfw.Key0)))
		} else if key >= glfw.KeyA && key <= glfw.KeyZ {
			keyName = string(rune('a' + (key - glfw.KeyA)))
		} else {
			keyName = glfw.GetKeyName(key, scancode)
		}
	}
	return modifiedKeyName(keyName,
		mods&glfw.ModShift != 0,
		mods&glfw.ModAlt != 0,
		mods&glfw.ModControl != 0)
}

func WithGL(windowTitle string, fpsCap float64, app GlfwApp) error {
	err := glfw.Init()
	if err != nil {
		return err
	}
	defer glfw.Terminate()

	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return fmt.Errorf("no monitors found")
	}
	mode := monitor.GetVideoMode()
	if mode == nil {
		return fmt.Errorf("video mode cannot be determined")
	}
	glfw.WindowHint(glfw.RedBits, mode.RedBits)
	glfw.WindowHint(glfw.GreenBits, mode.GreenBits)
	glfw.WindowHint(glfw.BlueBits, mode.BlueBits)
	glfw.WindowHint(glfw.RefreshRate, mode.RefreshRate)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLESAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 0)
	window, err := glfw.CreateWindow(defaultWindowWidth, defaultWindowHeight, windowTitle, nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()
	host := &GlfwHost{window: window, fpsCap: fpsCap}
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		host.fbSize = Size{X: width, Y: height}
		app.OnFramebufferSize(width, height)
	})
	window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		host.winSize = Size{X: width, Y: height}
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press && action != glfw.Repeat {
			return
		}
		if name := glfwKeyName(key, scancode, mods); name != "" {
			app.OnKey(name)
		}
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		app.OnCursorPos(x, y)
	})
	window.MakeContextCurrent()
	if err := initGL(); err != nil {
		return err
	}
	if fpsCap <= 0 {
		glfw.SwapInterval(1)
	}
	host.winSize.X, host.winSize.Y = window.GetSize()
	host.fbSize.X, host.fbSize.Y = window.GetFramebufferSize()
	if err := app.Init(host); err != nil {
		return err
	}
	defer app.Close()
	app.OnFramebufferSize(host.fbSize.X, host.fbSize.Y)
	for app.IsRunning() && !window.ShouldClose() {
		start := glfw.GetTime()
		host.runFrame()
		window.SwapBuffers()
		elapsedSeconds := glfw.GetTime() - start
		if fpsCap > 0 && 1.0/fpsCap > elapsedSeconds {
			glfw.WaitEventsTimeout(1.0/fpsCap - elapsedSeconds)
		} else {
			glfw.PollEvents()
		}
		if err := app.Update(); err != nil {
			return err
		}
	}
	return nil
}
