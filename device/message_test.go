package device

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Message
		wantErr string
	}{
		{
			name: "pong",
			raw:  "S:PM",
			want: Message{Category: CategorySystem, Subtype: "PM"},
		},
		{
			name: "system with payload",
			raw:  "S:SV4200",
			want: Message{Category: CategorySystem, Subtype: "SV", Payload: "4200"},
		},
		{
			name: "error skips subtype validation",
			raw:  "E:ZZ whatever",
			want: Message{Category: CategoryError, Payload: "ZZ whatever"},
		},
		{
			name: "empty error payload",
			raw:  "E:",
			want: Message{Category: CategoryError},
		},
		{
			name: "debug",
			raw:  "D:MRok",
			want: Message{Category: CategoryDebug, Subtype: "MR", Payload: "ok"},
		},
		{
			name: "gesture",
			raw:  "G:ST4",
			want: Message{Category: CategoryGesture, Subtype: "ST", Payload: "4"},
		},
		{
			name:    "unknown category",
			raw:     "X:PM",
			wantErr: `unknown message category "X"`,
		},
		{
			name:    "unknown system subtype",
			raw:     "S:QQ",
			wantErr: `unknown subtype "QQ" for category "S"`,
		},
		{
			name:    "unknown gesture subtype",
			raw:     "G:PM",
			wantErr: `unknown subtype "PM" for category "G"`,
		},
		{
			name:    "truncated",
			raw:     "S:P",
			wantErr: `truncated message "S:P"`,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: `truncated message ""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.raw)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Classify(%q) = %#v, want error", tt.raw, got)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("error = %q, want %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("Classify(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSubtypeVocabularies(t *testing.T) {
	if len(SystemSubtypes) != 9 {
		t.Fatalf("system vocabulary has %d entries, want 9", len(SystemSubtypes))
	}
	if len(DebugSubtypes) != 5 {
		t.Fatalf("debug vocabulary has %d entries, want 5", len(DebugSubtypes))
	}
	if len(GestureSubtypes) != 4 {
		t.Fatalf("gesture vocabulary has %d entries, want 4", len(GestureSubtypes))
	}
}
