//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/nestpoly/internal/document"
	"github.com/inamate/nestpoly/internal/engine"
)

// current is the options of the loaded animation.
var current *engine.Options

func main() {
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadAnimation", js.FuncOf(loadAnimation))
	api.Set("loadPreset", js.FuncOf(loadPreset))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("getAnimation", js.FuncOf(getAnimation))
	api.Set("getPresets", js.FuncOf(getPresets))
	api.Set("getTotalFrames", js.FuncOf(getTotalFrames))
	api.Set("getFrameDelay", js.FuncOf(getFrameDelay))

	js.Global().Set("nestpoly", api)
	js.Global().Set("nestpolyWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) js.Value {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

// --- Command Handlers ---

func loadAnimation(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing animation JSON"})
	}
	doc, err := document.Parse([]byte(args[0].String()))
	if err != nil {
		return errorResult(err)
	}
	return load(doc)
}

func loadPreset(this js.Value, args []js.Value) interface{} {
	name := "hexagon"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}
	doc, ok := document.Preset(name)
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": "unknown preset " + name})
	}
	return load(doc)
}

func load(doc document.Animation) interface{} {
	opts, err := doc.Options()
	if err != nil {
		return errorResult(err)
	}
	current = &opts
	return js.ValueOf(map[string]interface{}{"ok": true, "size": opts.Size()})
}

// --- Query Handlers ---

// render returns the draw commands of a frame as JSON. Frame numbers wrap
// around so callers can pass an ever increasing tick.
func render(this js.Value, args []js.Value) interface{} {
	if current == nil {
		return js.ValueOf("[]")
	}
	frame := 0
	if len(args) > 0 {
		frame = args[0].Int()
	}
	frame %= current.Frames
	if frame < 0 {
		frame += current.Frames
	}

	sg, err := engine.SceneAt(*current, frame)
	if err != nil {
		return js.ValueOf("[]")
	}
	out, _ := engine.DrawCommandsToJSON(engine.CompileDrawCommands(sg))
	return js.ValueOf(out)
}

func getAnimation(this js.Value, args []js.Value) interface{} {
	if current == nil {
		return js.ValueOf("null")
	}
	data, _ := json.Marshal(document.FromOptions(*current))
	return js.ValueOf(string(data))
}

func getPresets(this js.Value, args []js.Value) interface{} {
	names := document.PresetNames()
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return js.ValueOf(out)
}

func getTotalFrames(this js.Value, args []js.Value) interface{} {
	if current == nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(current.Frames)
}

func getFrameDelay(this js.Value, args []js.Value) interface{} {
	if current == nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(current.Delay.Milliseconds())
}
