package game

import "testing"

func TestToolNextCycles(t *testing.T) {
	tool := ToolExplode
	seen := make(map[Tool]bool)
	for range numTools {
		seen[tool] = true
		tool = tool.Next()
	}
	if tool != ToolExplode {
		t.Errorf("after %d steps got %v, want explode", numTools, tool)
	}
	if len(seen) != int(numTools) {
		t.Errorf("visited %d tools, want %d", len(seen), numTools)
	}
}

func TestToolString(t *testing.T) {
	tests := []struct {
		tool Tool
		want string
	}{
		{ToolExplode, "explode"},
		{ToolSpray, "spray"},
		{ToolInspect, "inspect"},
		{numTools, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.tool.String(); got != tt.want {
			t.Errorf("Tool(%d).String() = %q, want %q", tt.tool, got, tt.want)
		}
	}
}

func TestToolContinuous(t *testing.T) {
	if ToolExplode.continuous() {
		t.Error("explode should fire once per click")
	}
	if ToolInspect.continuous() {
		t.Error("inspect should not repeat")
	}
	for _, tool := range []Tool{ToolAttract, ToolVortex, ToolSpray, ToolErase} {
		if !tool.continuous() {
			t.Errorf("%v should repeat while held", tool)
		}
	}
}
