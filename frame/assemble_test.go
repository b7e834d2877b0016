package frame

import (
	"bytes"
	"fmt"
	"testing"
)

func quiet() *Assembler {
	return &Assembler{
		Diagnostic: func(format string, args ...interface{}) {},
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want []byte
	}{
		{
			name: "vibration command",
			desc: "[!BLINK][0][3][2|500]",
			want: []byte{3, 0, 3, 0x01, 0xF4},
		},
		{
			name: "lowercase command name",
			desc: "[!blink][0]",
			want: []byte{3, 0},
		},
		{
			name: "string with terminator",
			desc: "['hi']",
			want: []byte{'h', 'i', 0},
		},
		{
			name: "placeholder before string",
			desc: "[%len]['hi']",
			want: []byte{3, 'h', 'i', 0},
		},
		{
			name: "placeholder after string",
			desc: "['hi'][%len-1]",
			want: []byte{'h', 'i', 0, 3},
		},
		{
			name: "unresolvable placeholder",
			desc: "[%len][!RESET]",
			want: []byte{Sentinel, 13},
		},
		{
			name: "placeholder with explicit offset",
			desc: "[%len2][0]['ab']",
			want: []byte{3, 0, 'a', 'b', 0},
		},
		{
			name: "byte array records element count",
			desc: "[!PLAY][%len][1,0,250,7]",
			want: []byte{1, 4, 1, 0, 250, 7},
		},
		{
			name: "multi byte widths",
			desc: "[1|500][2|500][3|500][4|500]",
			want: []byte{
				0xF4,
				0x01, 0xF4,
				0x00, 0x01, 0xF4,
				0x00, 0x00, 0x01, 0xF4,
			},
		},
		{
			name: "negative multi byte",
			desc: "[2|-2]",
			want: []byte{0xFF, 0xFE},
		},
		{
			name: "negative single byte",
			desc: "[-1]",
			want: []byte{0xFF},
		},
		{
			name: "float is big endian",
			desc: "[1.0f]",
			want: []byte{0x3F, 0x80, 0x00, 0x00},
		},
		{
			name: "double is big endian",
			desc: "[1.0d]",
			want: []byte{0x3F, 0xF0, 0, 0, 0, 0, 0, 0},
		},
		{
			name: "whitespace tolerated",
			desc: "[ !RESET ][ 7 ]",
			want: []byte{13, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quiet().Assemble(tt.desc)
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("Assemble(%q) = % X, want % X", tt.desc, got, tt.want)
			}
		})
	}
}

func TestAssembleSkipsBadTokens(t *testing.T) {
	var diags []string
	a := &Assembler{
		Diagnostic: func(format string, args ...interface{}) {
			diags = append(diags, fmt.Sprintf(format, args...))
		},
	}

	// The unknown command and the garbage byte are skipped; the
	// frame is still best-effort assembled from the rest.
	got := a.Assemble("[!NO_SUCH_COMMAND][!RESET][tacos][7]")
	want := []byte{13, 7}
	if !bytes.Equal(got, want) {
		t.Fatalf("Assemble = % X, want % X", got, want)
	}
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(diags), diags)
	}
}

func TestAssembleSkippedTokenKeepsIndex(t *testing.T) {
	// A failed token doesn't consume a token index, so emitted
	// tokens stay contiguous for token-index length records.
	var diags int
	a := &Assembler{
		Diagnostic: func(format string, args ...interface{}) { diags++ },
	}
	got := a.Assemble("[junk]['hi'][1]")
	want := []byte{'h', 'i', 0, 1}
	if !bytes.Equal(got, want) {
		t.Fatalf("Assemble = % X, want % X", got, want)
	}
	if diags != 1 {
		t.Fatalf("got %d diagnostics, want 1", diags)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	desc := "[!PLAY][%len][2,1,4,1,0,150,5,7]['abc'][3|100000][1.5f]"
	first := Assemble(desc)
	for i := 0; i < 10; i++ {
		if got := Assemble(desc); !bytes.Equal(got, first) {
			t.Fatalf("run %d: % X != % X", i, got, first)
		}
	}

	// With no placeholders, output length is the sum of the fixed
	// emission widths.
	got := quiet().Assemble("[!RESET][7][2|500]['hi'][1.0f][1.0d][1,2,3]")
	if want := 1 + 1 + 2 + 3 + 4 + 8 + 3; len(got) != want {
		t.Fatalf("len = %d, want %d", len(got), want)
	}
}

func TestOpcode(t *testing.T) {
	if op, have := Opcode("play"); !have || op != 1 {
		t.Fatalf("Opcode(play) = %d, %v", op, have)
	}
	if _, have := Opcode("QUESO"); have {
		t.Fatal("Opcode(QUESO) resolved")
	}
	if len(Commands) != 14 {
		t.Fatalf("command vocabulary has %d entries, want 14", len(Commands))
	}
}
