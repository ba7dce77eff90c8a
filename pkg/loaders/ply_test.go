package loaders

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/google/go-cmp/cmp"
)

var squareVertices = []core.Vec3{
	core.NewVec3(0, 0, 0),
	core.NewVec3(1, 0, 0),
	core.NewVec3(1, 1, 0),
	core.NewVec3(0, 1, 0),
}

// binarySquarePLY encodes a unit square as one quad face with extra properties to skip
func binarySquarePLY(order binary.ByteOrder, format string) []byte {
	var buf bytes.Buffer

	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("comment generated for tests\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	buf.WriteString("property uchar red\n")
	buf.WriteString("element face 1\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("property uchar material\n")
	buf.WriteString("end_header\n")

	for _, v := range squareVertices {
		binary.Write(&buf, order, float32(v.X))
		binary.Write(&buf, order, float32(v.Y))
		binary.Write(&buf, order, float32(v.Z))
		binary.Write(&buf, order, uint8(200))
	}

	binary.Write(&buf, order, uint8(4))
	for _, idx := range []int32{0, 1, 2, 3} {
		binary.Write(&buf, order, idx)
	}
	binary.Write(&buf, order, uint8(7))

	return buf.Bytes()
}

const asciiSquarePLY = `ply
format ascii 1.0
element vertex 4
property double x
property double y
property double z
element face 2
property list uchar uint vertex_index
end_header
0 0 0
1 0 0
1 1 0
0 1 0
3 0 1 2
3 0 2 3
`

func TestReadPLY_Encodings(t *testing.T) {
	wantFaces := []int{0, 1, 2, 0, 2, 3}

	tests := []struct {
		name  string
		input []byte
	}{
		{"binary little endian", binarySquarePLY(binary.LittleEndian, "binary_little_endian")},
		{"binary big endian", binarySquarePLY(binary.BigEndian, "binary_big_endian")},
		{"ascii", []byte(asciiSquarePLY)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadPLY(bytes.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadPLY failed: %v", err)
			}
			if diff := cmp.Diff(squareVertices, data.Vertices); diff != "" {
				t.Errorf("Vertices mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(wantFaces, data.Faces); diff != "" {
				t.Errorf("Faces mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadPLY_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not a ply file", "solid cube\n"},
		{"missing end_header", "ply\nformat ascii 1.0\nelement vertex 0\n"},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nend_header\n"},
		{"missing z", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nend_header\n0 0\n"},
		{"truncated body", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"index out of range", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 3\n"},
		{"vertex count larger than the body", "ply\nformat ascii 1.0\nelement vertex 4000000000000000000\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"face count larger than the body", "ply\nformat binary_little_endian 1.0\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\nelement face 4000000000000000000\nproperty list uchar int vertex_indices\nend_header\n"},
		{"huge list length", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list int int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n4000000000 0 1 2\n"},
		{"fractional list length", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3.5 0 1 2\n"},
		{"degenerate face", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n2 0 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadPLY(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestLoadPLY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.ply")
	if err := os.WriteFile(path, binarySquarePLY(binary.LittleEndian, "binary_little_endian"), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := LoadPLY(path)
	if err != nil {
		t.Fatalf("LoadPLY failed: %v", err)
	}
	if len(data.Vertices) != 4 || len(data.Faces) != 6 {
		t.Errorf("Expected 4 vertices and 6 indices, got %d and %d", len(data.Vertices), len(data.Faces))
	}

	if _, err := LoadPLY(filepath.Join(t.TempDir(), "missing.ply")); err == nil {
		t.Error("Expected error for missing file")
	}
}
