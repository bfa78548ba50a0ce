package batch

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	e "sobel/pkg/errors"
)

type fakeApplier struct {
	calls [][2]string
	fail  map[string]error
}

func (f *fakeApplier) Apply(input, output string) error {
	f.calls = append(f.calls, [2]string{input, output})
	if err, ok := f.fail[filepath.Base(input)]; ok {
		return err
	}
	return nil
}

type countingProgress struct{ n int }

func (c *countingProgress) Increment() { c.n++ }

func writeFiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func rels(jobs []Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Rel
	}
	return out
}

func TestPlan_DefaultPattern(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "edges")
	writeFiles(t, in, "b.png", "a.jpg", "notes.txt", "sub/c.jpeg", ".cache/d.png", "sub/deeper/e.png")

	jobs, err := Plan(Options{InputDir: in, OutputDir: out})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	want := []string{"a.jpg", "b.png", "sub/c.jpeg", "sub/deeper/e.png"}
	if got := rels(jobs); !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan() rels = %v, want %v", got, want)
	}
	if jobs[2].Input != filepath.Join(in, "sub", "c.jpeg") || jobs[2].Output != filepath.Join(out, "sub", "c.jpeg") {
		t.Errorf("unexpected job paths: %+v", jobs[2])
	}
}

func TestPlan_CustomPattern(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, "a.png", "b.jpg", "sub/c.png")
	tests := []struct {
		pattern string
		want    []string
	}{
		{"*.png", []string{"a.png"}},
		{"**.png", []string{"a.png", "sub/c.png"}},
		{"sub/*", []string{"sub/c.png"}},
		{"*.{jpg,png}", []string{"a.png", "b.jpg"}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			jobs, err := Plan(Options{InputDir: in, OutputDir: t.TempDir(), Pattern: tt.pattern})
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if got := rels(jobs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlan_SkipsOutputDirInsideInput(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, "a.png", "out/a.png")
	jobs, err := Plan(Options{InputDir: in, OutputDir: filepath.Join(in, "out")})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if got := rels(jobs); !reflect.DeepEqual(got, []string{"a.png"}) {
		t.Errorf("rels = %v", got)
	}
}

func TestPlan_Errors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.png")
	writeFiles(t, filepath.Dir(file), "file.png")
	tests := []struct {
		name string
		opts Options
		code e.ErrorCode
	}{
		{"missing dirs", Options{}, e.ErrInvalidArgs},
		{"no such dir", Options{InputDir: filepath.Join(t.TempDir(), "nope"), OutputDir: "out"}, e.ErrFileNotFound},
		{"not a dir", Options{InputDir: file, OutputDir: "out"}, e.ErrInvalidArgs},
		{"bad pattern", Options{InputDir: t.TempDir(), OutputDir: "out", Pattern: "[a-"}, e.ErrInvalidArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := e.CodeOf(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestPlan_RejectsSameInputAndOutput(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, "a.png")
	link := filepath.Join(t.TempDir(), "alias")
	if err := os.Symlink(in, link); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		out  string
	}{
		{"identical", in},
		{"trailing separator", in + string(filepath.Separator)},
		{"dot segment", filepath.Join(in, "sub", "..")},
		{"symlink", link},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := Plan(Options{InputDir: in, OutputDir: tt.out})
			if e.CodeOf(err) != e.ErrInvalidArgs {
				t.Fatalf("Plan() error = %v, want INVALID_ARGS", err)
			}
			if len(jobs) != 0 {
				t.Errorf("Plan() returned jobs %v", rels(jobs))
			}
		})
	}
}

func TestSameDir(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	if !SameDir(a, filepath.Join(a, ".")) {
		t.Error("expected a and a/. to be the same directory")
	}
	if SameDir(a, b) {
		t.Error("distinct directories reported as the same")
	}
	if SameDir(a, filepath.Join(a, "edges")) {
		t.Error("a nested output directory is not the input directory")
	}
}

func TestRun_AllSucceed(t *testing.T) {
	out := t.TempDir()
	jobs := []Job{
		{Input: "in/a.png", Output: filepath.Join(out, "a.png"), Rel: "a.png"},
		{Input: "in/sub/b.png", Output: filepath.Join(out, "sub", "b.png"), Rel: "sub/b.png"},
	}
	f := &fakeApplier{}
	p := &countingProgress{}
	rpt, err := Run(f, jobs, Options{}, p)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rpt.Total != 2 || rpt.Succeeded != 2 || len(rpt.Failed) != 0 {
		t.Errorf("report = %+v", rpt)
	}
	if p.n != 2 {
		t.Errorf("progress ticks = %d", p.n)
	}
	if len(f.calls) != 2 || f.calls[1] != [2]string{"in/sub/b.png", filepath.Join(out, "sub", "b.png")} {
		t.Errorf("calls = %v", f.calls)
	}
	if _, err := os.Stat(filepath.Join(out, "sub")); err != nil {
		t.Errorf("output parent not created: %v", err)
	}
}

func TestRun_FailFast(t *testing.T) {
	out := t.TempDir()
	boom := e.New(e.ErrExternalProcessFailed, "exit 1").WithExitCode(1)
	jobs := []Job{
		{Input: "a.png", Output: filepath.Join(out, "a.png"), Rel: "a.png"},
		{Input: "b.png", Output: filepath.Join(out, "b.png"), Rel: "b.png"},
		{Input: "c.png", Output: filepath.Join(out, "c.png"), Rel: "c.png"},
	}
	f := &fakeApplier{fail: map[string]error{"b.png": boom}}
	rpt, err := Run(f, jobs, Options{}, nil)
	if err != boom {
		t.Fatalf("expected the first failure to be returned, got %v", err)
	}
	if len(f.calls) != 2 {
		t.Errorf("expected run to stop after failure, calls = %v", f.calls)
	}
	if rpt.Succeeded != 1 || len(rpt.Failed) != 1 {
		t.Errorf("report = %+v", rpt)
	}
}

func TestRun_KeepGoing(t *testing.T) {
	out := t.TempDir()
	errB := e.New(e.ErrExternalProcessFailed, "exit 2").WithExitCode(2)
	errC := stdErrors.New("plain failure")
	jobs := []Job{
		{Input: "a.png", Output: filepath.Join(out, "a.png"), Rel: "a.png"},
		{Input: "b.png", Output: filepath.Join(out, "b.png"), Rel: "b.png"},
		{Input: "c.png", Output: filepath.Join(out, "c.png"), Rel: "c.png"},
	}
	f := &fakeApplier{fail: map[string]error{"b.png": errB, "c.png": errC}}
	rpt, err := Run(f, jobs, Options{KeepGoing: true}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(f.calls) != 3 {
		t.Errorf("all jobs should run, calls = %v", f.calls)
	}
	if rpt.Succeeded != 1 || len(rpt.Failed) != 2 {
		t.Errorf("report = %+v", rpt)
	}
	if !stdErrors.Is(err, errC) {
		t.Error("joined error should contain every failure")
	}
	var sobelErr *e.SobelError
	if !stdErrors.As(err, &sobelErr) || sobelErr.ExitCode != 2 {
		t.Errorf("expected exit code of first failure, got %+v", sobelErr)
	}
}

func TestMatcher(t *testing.T) {
	m, err := Compile("")
	if err != nil {
		t.Fatal(err)
	}
	if m.String() == "" {
		t.Error("expected default pattern")
	}
	if !m.Match(filepath.Join("sub", "x.png")) || m.Match("x.gif") {
		t.Error("default pattern mismatch")
	}
}
