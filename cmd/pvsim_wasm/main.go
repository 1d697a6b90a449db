//go:build js && wasm

// Command pvsim_wasm exposes analyzeVault to the browser.
package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
	"github.com/sandiegoi-PV/AI-PVSim/pipeline"
)

func main() {
	js.Global().Set("analyzeVault", js.FuncOf(analyzeVault))
	select {}
}

// analyzeVault(landmarkBytes Uint8Array, options object) returns
// {ok, zip, files, warnings, analysis_id, best_reference} or {ok:false, error}.
func analyzeVault(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("landmark file bytes are required")
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return failure("failed to read landmark bytes from JS input")
	}

	athlete := pvsim.DefaultConfig()
	massExplicit := false
	if v := getFloat(optsArg, "mass_kg"); v > 0 {
		athlete.MassKG = v
		massExplicit = true
	}
	if v := getFloat(optsArg, "height_m"); v > 0 {
		athlete.HeightM = v
	}
	if v := getFloat(optsArg, "pixel_to_meter"); v > 0 {
		athlete.PixelToMeter = v
	}

	opts := pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "landmarks.json"),
		LandmarkData:   fileBytes,
		Athlete:        athlete,
		MassExplicit:   massExplicit,
		AthleteFIT:     getBytes(optsArg, "athlete_fit"),
		Format:         getString(optsArg, "format", pipeline.FormatCSV),
		CopySource:     true,
	}
	result, err := pipeline.RunBytes(opts)
	if err != nil {
		return failure(err.Error())
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	return map[string]any{
		"ok":             true,
		"zip":            payload,
		"analysis_id":    result.AnalysisID,
		"best_reference": result.Analysis.BestReference,
		"warnings":       stringsToAny(result.Warnings),
		"files":          stringsToAny(fileNames),
	}
}

func failure(msg string) map[string]any {
	return map[string]any{"ok": false, "error": msg}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{Name: name, Method: zip.Deflate}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeString {
		return fallback
	}
	if s := out.String(); s != "" {
		return s
	}
	return fallback
}

func getFloat(v js.Value, key string) float64 {
	if v.IsUndefined() || v.IsNull() {
		return 0
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return 0
	}
	return out.Float()
}

func getBytes(v js.Value, key string) []byte {
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Get("length").Int() == 0 {
		return nil
	}
	data := make([]byte, out.Get("length").Int())
	js.CopyBytesToGo(data, out)
	return data
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
