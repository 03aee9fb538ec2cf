package object

import (
	"testing"

	"github.com/bacworks/bacworks-go/pkg/wire"
)

func TestObjectID(t *testing.T) {
	o := Object{Kind: KindAnalogInput, Instance: 3, Name: "zone-temp"}

	want := wire.ObjectID{Type: wire.ObjectTypeAnalogInput, Instance: 3}
	if got := o.ID(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestObjectValidate(t *testing.T) {
	tests := []struct {
		name    string
		obj     Object
		wantErr bool
	}{
		{
			name: "valid",
			obj:  Object{Kind: KindAnalogInput, Instance: 1, Name: "zone-temp"},
		},
		{
			name:    "missing name",
			obj:     Object{Kind: KindAnalogInput, Instance: 1},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			obj:     Object{Kind: KindUnknown, Instance: 1, Name: "x"},
			wantErr: true,
		},
		{
			name:    "instance too large",
			obj:     Object{Kind: KindAnalogInput, Instance: wire.MaxInstance + 1, Name: "x"},
			wantErr: true,
		},
		{
			name: "max instance",
			obj:  Object{Kind: KindAnalogInput, Instance: wire.MaxInstance, Name: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.obj.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQualityFromStatusFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags wire.StatusFlags
		want  Quality
	}{
		{name: "clear", flags: wire.StatusFlags{}, want: QualityNormal},
		{name: "in alarm", flags: wire.StatusFlags{InAlarm: true}, want: QualityInAlarm},
		{name: "overridden", flags: wire.StatusFlags{Overridden: true}, want: QualityOverridden},
		{name: "out of service", flags: wire.StatusFlags{OutOfService: true}, want: QualityOutOfService},
		{name: "fault", flags: wire.StatusFlags{Fault: true}, want: QualityFault},
		{
			name:  "fault wins over alarm",
			flags: wire.StatusFlags{InAlarm: true, Fault: true},
			want:  QualityFault,
		},
		{
			name:  "out of service wins over overridden",
			flags: wire.StatusFlags{Overridden: true, OutOfService: true},
			want:  QualityOutOfService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualityFromStatusFlags(tt.flags); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadingString(t *testing.T) {
	r := Reading{
		Object: Object{Kind: KindAnalogInput, Instance: 3, Name: "zone-temp"},
		Value:  21.5,
	}
	if got := r.String(); got != "zone-temp = 21.5" {
		t.Errorf("got %q", got)
	}

	r.Quality = QualityFault
	if got := r.String(); got != "zone-temp = 21.5 [fault]" {
		t.Errorf("got %q", got)
	}
}
