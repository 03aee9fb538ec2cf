package log

import "testing"

func TestDirectionString(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{DirectionIn, "IN"},
		{DirectionOut, "OUT"},
		{Direction(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.dir.String()
		if got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestLayerString(t *testing.T) {
	tests := []struct {
		layer Layer
		want  string
	}{
		{LayerTransport, "TRANSPORT"},
		{LayerEngine, "ENGINE"},
		{LayerSession, "SESSION"},
		{Layer(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.layer.String()
		if got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", tt.layer, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{CategoryFrame, "FRAME"},
		{CategoryRequest, "REQUEST"},
		{CategoryState, "STATE"},
		{CategoryDiscovery, "DISCOVERY"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.cat.String()
		if got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.cat, got, tt.want)
		}
	}
}

func TestStateEntityString(t *testing.T) {
	tests := []struct {
		entity StateEntity
		want   string
	}{
		{StateEntitySession, "SESSION"},
		{StateEntityHealth, "HEALTH"},
		{StateEntityMonitor, "MONITOR"},
		{StateEntity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.entity.String()
		if got != tt.want {
			t.Errorf("StateEntity(%d).String() = %q, want %q", tt.entity, got, tt.want)
		}
	}
}

func TestDirectionValues(t *testing.T) {
	// Verify explicit values for wire stability
	if DirectionIn != 0 {
		t.Errorf("DirectionIn = %d, want 0", DirectionIn)
	}
	if DirectionOut != 1 {
		t.Errorf("DirectionOut = %d, want 1", DirectionOut)
	}
}

func TestLayerValues(t *testing.T) {
	// Verify explicit values for wire stability
	if LayerTransport != 0 {
		t.Errorf("LayerTransport = %d, want 0", LayerTransport)
	}
	if LayerEngine != 1 {
		t.Errorf("LayerEngine = %d, want 1", LayerEngine)
	}
	if LayerSession != 2 {
		t.Errorf("LayerSession = %d, want 2", LayerSession)
	}
}

func TestCategoryValues(t *testing.T) {
	// Verify explicit values for wire stability
	if CategoryFrame != 0 {
		t.Errorf("CategoryFrame = %d, want 0", CategoryFrame)
	}
	if CategoryRequest != 1 {
		t.Errorf("CategoryRequest = %d, want 1", CategoryRequest)
	}
	if CategoryState != 2 {
		t.Errorf("CategoryState = %d, want 2", CategoryState)
	}
	if CategoryDiscovery != 3 {
		t.Errorf("CategoryDiscovery = %d, want 3", CategoryDiscovery)
	}
	if CategoryError != 4 {
		t.Errorf("CategoryError = %d, want 4", CategoryError)
	}
}

func TestStateEntityValues(t *testing.T) {
	// Verify explicit values for wire stability
	if StateEntitySession != 0 {
		t.Errorf("StateEntitySession = %d, want 0", StateEntitySession)
	}
	if StateEntityHealth != 1 {
		t.Errorf("StateEntityHealth = %d, want 1", StateEntityHealth)
	}
	if StateEntityMonitor != 2 {
		t.Errorf("StateEntityMonitor = %d, want 2", StateEntityMonitor)
	}
}
