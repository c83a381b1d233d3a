package testrunner

import (
	"strings"
	"testing"
)

func TestRenderHeadlessDefaults(t *testing.T) {
	r := NewRunner(Config{})
	plan, err := r.Render(Invocation{ProjectPath: "/p.xml", TestSuite: "Suite1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if plan.Mode != ModeHeadless {
		t.Fatalf("mode = %q, want headless", plan.Mode)
	}
	want := "testrunner.sh -sSuite1 -Edefault -r -j /p.xml"
	if plan.Command != want {
		t.Fatalf("command = %q, want %q", plan.Command, want)
	}
}

func TestRenderHeadlessQuotesArguments(t *testing.T) {
	r := NewRunner(Config{TestRunnerPath: "/opt/SoapUI 5/bin/testrunner.sh"})
	plan, err := r.Render(Invocation{
		ProjectPath:   "/work/my project.xml",
		TestSuite:     "Smoke Suite",
		TestCase:      "Login",
		Environment:   "staging",
		Mode:          ModeHeadless,
		ReportsFolder: "/tmp/reports",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"'/opt/SoapUI 5/bin/testrunner.sh'", "'-sSmoke Suite'", "-cLogin", "-Estaging", "-f/tmp/reports", "'/work/my project.xml'"} {
		if !strings.Contains(plan.Command, want) {
			t.Fatalf("command %q missing %q", plan.Command, want)
		}
	}
	if len(plan.Args) != 8 {
		t.Fatalf("expected 8 args, got %v", plan.Args)
	}
}

func TestRenderGUI(t *testing.T) {
	r := NewRunner(Config{GUIPath: "soapui.sh"})
	plan, err := r.Render(Invocation{ProjectPath: "/p.xml", TestSuite: "Suite1", Mode: ModeGUI})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if plan.Command != "soapui.sh /p.xml" {
		t.Fatalf("command = %q", plan.Command)
	}
}

func TestRenderRejectsInvalidInput(t *testing.T) {
	r := NewRunner(Config{})
	if _, err := r.Render(Invocation{TestSuite: "S"}); err == nil {
		t.Fatal("expected error for empty project path")
	}
	if _, err := r.Render(Invocation{ProjectPath: "/p.xml"}); err == nil {
		t.Fatal("expected error for empty suite")
	}
	if _, err := r.Render(Invocation{ProjectPath: "/p.xml", TestSuite: "S", Mode: "batch"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", ModeHeadless, true},
		{"headless", ModeHeadless, true},
		{"GUI", ModeGUI, true},
		{"batch", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMode(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
