package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	pzerrors "github.com/FocuswithJustin/PoleZero/core/errors"
)

const (
	aleFile = "SAC_PZs_II_ALE_BHZ_00"
	yssFile = "SAC_PZs_IU_YSS_BHZ_00"
)

func testdata(name string) string {
	return filepath.Join("..", "..", "core", "pz", "testdata", name)
}

// writeTestConfig writes a config that points the catalog into a temp dir.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "catalog:\n  path: " + filepath.Join(dir, "catalog.db") + "\nworkers: 2\n"
	path := filepath.Join(dir, "polezero.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// runCLI parses args the way main does and runs the selected command.
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var (
		cli CLI
		out bytes.Buffer
	)
	opts := append(kongOptions(), kong.Writers(&out, &out), kong.Exit(func(int) {}))
	parser, err := kong.New(&cli, opts...)
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}
	ctx, err := parser.Parse(append([]string{"--config", configPath}, args...))
	if err != nil {
		return out.String(), err
	}
	app, err := newApp(&cli.Globals, &out)
	if err != nil {
		return out.String(), err
	}
	err = ctx.Run(app)
	return out.String(), err
}

func TestParseCmdJSON(t *testing.T) {
	cfg := writeTestConfig(t)
	out, err := runCLI(t, cfg, "parse", testdata(yssFile), testdata(aleFile))
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}

	var files []struct {
		Path        string `json:"path"`
		Instruments []struct {
			Header   map[string]any `json:"header"`
			Zeros    []any          `json:"zeros"`
			Poles    []any          `json:"poles"`
			Constant *float64       `json:"constant"`
		} `json:"instruments"`
	}
	if err := json.Unmarshal([]byte(out), &files); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if !strings.HasSuffix(files[0].Path, yssFile) || !strings.HasSuffix(files[1].Path, aleFile) {
		t.Errorf("paths = %q, %q, want input order", files[0].Path, files[1].Path)
	}

	yss := files[0].Instruments[0]
	if got := yss.Header["GAIN"]; got != 12300.0 {
		t.Errorf("GAIN = %v, want 12300", got)
	}
	if got := yss.Header["LOCATION"]; got != "00" {
		t.Errorf("LOCATION = %v, want \"00\"", got)
	}
	if len(yss.Zeros) != 2 || len(yss.Poles) != 3 {
		t.Errorf("zeros/poles = %d/%d, want 2/3", len(yss.Zeros), len(yss.Poles))
	}
	if yss.Constant == nil || *yss.Constant != 4.94740e+04 {
		t.Errorf("constant = %v, want 49474", yss.Constant)
	}
	if len(files[1].Instruments) != 2 {
		t.Errorf("ALE instruments = %d, want 2", len(files[1].Instruments))
	}
}

func TestParseCmdText(t *testing.T) {
	out, err := runCLI(t, writeTestConfig(t), "parse", "--format", "text", testdata(aleFile))
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	for _, want := range []string{
		"instrument 1: II.ALE.00.BHZ",
		"instrument 2: II.ALE.00.BHZ",
		"epoch: 2010-07-21T00:00:00Z .. N/A",
		"zeros (3):",
		"poles (4):",
		"constant: 3.974386e+12",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseCmdFormatError(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad")
	if err := os.WriteFile(bad, []byte("ZEROS 0\nPOLES 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, writeTestConfig(t), "parse", bad)
	if !errors.Is(err, pzerrors.ErrNoDelimiterFound) {
		t.Errorf("parse error = %v, want ErrNoDelimiterFound", err)
	}
}

func TestInfoCmd(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCLI(t, cfg, "info", testdata(aleFile))
	if err != nil {
		t.Fatalf("info error = %v", err)
	}
	for _, want := range []string{"#1  II.ALE.00.BHZ", "#2  II.ALE.00.BHZ", "Streckeisen STS-1 Seismometer", "82.503296"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, cfg, "info", "-f", "json", testdata(yssFile))
	if err != nil {
		t.Fatalf("info json error = %v", err)
	}
	var records []infoRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(records) != 1 || records[0].SEEDID != "IU.YSS.00.BHZ" {
		t.Errorf("records = %+v, want one IU.YSS.00.BHZ", records)
	}
}

func TestCatalogCommands(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCLI(t, cfg, "catalog", "import", testdata(aleFile), testdata(yssFile))
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if strings.Count(out, ": imported as ") != 2 {
		t.Errorf("import output:\n%s", out)
	}

	out, err = runCLI(t, cfg, "catalog", "import", testdata(aleFile))
	if err != nil {
		t.Fatalf("second import error = %v", err)
	}
	if !strings.Contains(out, "already cataloged") {
		t.Errorf("second import output:\n%s", out)
	}

	out, err = runCLI(t, cfg, "catalog", "find", "--station", "ALE", "--at", "2009-01-01")
	if err != nil {
		t.Fatalf("find error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "2007-07-31T00:00:00Z .. 2010-07-20T23:59:59Z") {
		t.Errorf("find output:\n%s", out)
	}

	out, err = runCLI(t, cfg, "catalog", "files", "--format", "json")
	if err != nil {
		t.Fatalf("files error = %v", err)
	}
	var files []struct {
		ID          string `json:"id"`
		Instruments int    `json:"instruments"`
	}
	if err := json.Unmarshal([]byte(out), &files); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}

	if _, err := runCLI(t, cfg, "catalog", "remove", files[0].ID); err != nil {
		t.Fatalf("remove error = %v", err)
	}
	if _, err := runCLI(t, cfg, "catalog", "remove", files[0].ID); !errors.Is(err, pzerrors.ErrNotFound) {
		t.Errorf("second remove error = %v, want ErrNotFound", err)
	}

	out, err = runCLI(t, cfg, "catalog", "find", "--network", "XX")
	if err != nil {
		t.Fatalf("find error = %v", err)
	}
	if !strings.Contains(out, "no matching instruments") {
		t.Errorf("find output:\n%s", out)
	}
}

func TestFindCmdBadTime(t *testing.T) {
	_, err := runCLI(t, writeTestConfig(t), "catalog", "find", "--at", "yesterday")
	if err == nil || !strings.Contains(err.Error(), "invalid --at") {
		t.Errorf("find error = %v, want invalid --at", err)
	}
}

func TestGlobalOverrides(t *testing.T) {
	cfg := writeTestConfig(t)

	for _, bad := range [][]string{
		{"--log-level", "loud"},
		{"--log-format", "xml"},
	} {
		_, err := runCLI(t, cfg, append(bad, "version")...)
		if !errors.Is(err, pzerrors.ErrInvalidInput) {
			t.Errorf("%v error = %v, want ErrInvalidInput", bad, err)
		}
	}

	out, err := runCLI(t, cfg, "--log-format", "json", "--workers", "1", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "pzparse version "+version) {
		t.Errorf("version output = %q", out)
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "absent.toml"), "version")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}
