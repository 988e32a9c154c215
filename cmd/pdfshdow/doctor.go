package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	pdfshdow "github.com/wang824892540/PDFShdow"
	"github.com/wang824892540/PDFShdow/internal/pdf"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"`
	Renderer rendererInfo `json:"renderer"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// rendererInfo reports whether MuPDF could render a probe page.
type rendererInfo struct {
	OK     bool `json:"ok"`
	Width  int  `json:"width,omitempty"`
	Height int  `json:"height,omitempty"`
}

type envInfo struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUs      int    `json:"cpus"`
	PoolSize  int    `json:"render_pool_size"`
	Container bool   `json:"container"`
	CI        bool   `json:"ci"`
}

type systemInfo struct {
	TempWritable   bool   `json:"temp_writable"`
	OutputDir      string `json:"output_dir"`
	OutputWritable bool   `json:"output_writable"`
}

// runDoctorCmd executes the doctor command. Any error check fails it.
func runDoctorCmd(args []string, env *Environment) error {
	fs := newFlagSet("doctor", printDoctorUsage, env.Stderr)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	outDir := "."
	if env.Config != nil && env.Config.Output.DefaultDir != "" {
		outDir = env.Config.Output.DefaultDir
	}
	if v := os.Getenv(envOutputDir); v != "" {
		outDir = v
	}
	result := runDoctor(pdfshdow.NewFitzRasterizer, outDir)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return fmt.Errorf("doctor found %d error(s)", len(result.Errors))
	}
	return nil
}

// runDoctor performs all diagnostic checks.
func runDoctor(newRasterizer pdfshdow.RasterizerFactory, outDir string) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			CPUs:     runtime.NumCPU(),
			PoolSize: pdfshdow.ResolveRenderPoolSize(0),
		},
	}

	checkRenderer(result, newRasterizer)
	checkEnvironment(result)
	checkSystem(result, outDir)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkRenderer renders a generated one-page PDF at 72 dpi.
func checkRenderer(result *doctorResult, newRasterizer pdfshdow.RasterizerFactory) {
	dir, err := os.MkdirTemp("", "pdfshdow-doctor-")
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot create probe directory: %v", err))
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	b := pdf.NewBuilder()
	if _, err := b.AddPage(100, 50); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot build probe page: %v", err))
		return
	}
	data, err := b.Bytes()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot build probe page: %v", err))
		return
	}
	probe := filepath.Join(dir, "probe.pdf")
	if err := os.WriteFile(probe, data, 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot write probe page: %v", err))
		return
	}

	r, err := newRasterizer()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Renderer unavailable: %v", err))
		return
	}
	defer func() { _ = r.Close() }()

	img, err := r.Rasterize(probe, 72)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Renderer failed: %v", err))
		return
	}
	result.Renderer.OK = true
	result.Renderer.Width = img.Bounds().Dx()
	result.Renderer.Height = img.Bounds().Dy()
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		result.Env.Container = true
	} else if os.Getenv("container") != "" || os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		result.Env.Container = true
	}

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// Containers often report host CPUs while enforcing a smaller quota.
	if result.Env.Container && result.Env.CPUs > 8 {
		result.Warnings = append(result.Warnings,
			"Container detected with many CPUs. Set --workers if pdf2img is slow or killed")
	}
}

// checkSystem verifies the temp and output directories are writable.
func checkSystem(result *doctorResult, outDir string) {
	result.System.TempWritable = writable(os.TempDir())
	if !result.System.TempWritable {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
	}

	result.System.OutputDir = outDir
	result.System.OutputWritable = writable(outDir)
	if !result.System.OutputWritable {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Output directory not writable: %s", outDir))
	}
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".pdfshdow-doctor-")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "pdfshdow doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Renderer (MuPDF)")
	if r.Renderer.OK {
		fmt.Fprintf(w, "  [OK] Probe page rendered (%dx%d)\n", r.Renderer.Width, r.Renderer.Height)
	} else {
		fmt.Fprintln(w, "  [ERROR] Cannot render")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] CPUs: %d (render pool: %d)\n", r.Env.CPUs, r.Env.PoolSize)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.OutputWritable {
		fmt.Fprintf(w, "  [OK] Output directory: %s\n", r.System.OutputDir)
	} else {
		fmt.Fprintf(w, "  [WARN] Output directory: %s not writable\n", r.System.OutputDir)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
