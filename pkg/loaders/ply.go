package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
)

const (
	// maxPreallocate caps the capacity reserved from header counts; larger bodies grow by append
	maxPreallocate = 1 << 16

	// maxListLength bounds a single list property, such as the vertex indices of one face
	maxListLength = 1 << 16
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYData contains the geometry loaded from a PLY file
type PLYData struct {
	Vertices []core.Vec3 // Vertex positions (x, y, z)
	Faces    []int       // Triangle indices (3 per triangle); polygons are fan-triangulated
}

// LoadPLY loads a PLY file and returns its vertices and triangles
func LoadPLY(filename string) (*PLYData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// ReadPLY parses a PLY stream in any of the three standard encodings
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values valueReader
	switch header.Format {
	case "binary_little_endian":
		values = &binaryValueReader{r: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValueReader{r: reader, order: binary.BigEndian}
	case "ascii":
		scanner := bufio.NewScanner(reader)
		scanner.Split(bufio.ScanWords)
		values = &asciiValueReader{scanner: scanner}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %q", header.Format)
	}

	data, err := readPLYBody(values, header)
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}
	return data, nil
}

// parsePLYHeader reads header lines up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("missing ply magic number")
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("header ended before end_header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("malformed format line %q", line)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("malformed element line %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}

			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, fmt.Errorf("unsupported element %q", currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}

			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		default:
			return nil, fmt.Errorf("unexpected header line %q", line)
		}
	}

	for _, axis := range []string{"x", "y", "z"} {
		if indexOfProperty(header.VertexProps, axis) < 0 {
			return nil, fmt.Errorf("vertex element has no %q property", axis)
		}
	}
	if header.FaceCount > 0 && faceIndexProperty(header.FaceProps) < 0 {
		return nil, fmt.Errorf("face element has no vertex index list")
	}

	return header, nil
}

// parsePLYProperty parses "float x" or "list uchar int vertex_indices"
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		prop := PLYProperty{Name: parts[3], Type: "list", IsList: true, ListType: parts[1], DataType: parts[2]}
		if typeSize(prop.ListType) == 0 || typeSize(prop.DataType) == 0 {
			return PLYProperty{}, fmt.Errorf("unknown list types in %v", parts)
		}
		return prop, nil
	}
	if len(parts) == 2 {
		if typeSize(parts[0]) == 0 {
			return PLYProperty{}, fmt.Errorf("unknown property type %q", parts[0])
		}
		return PLYProperty{Name: parts[1], Type: parts[0]}, nil
	}
	return PLYProperty{}, fmt.Errorf("malformed property %v", parts)
}

func readPLYBody(values valueReader, header *PLYHeader) (*PLYData, error) {
	data := &PLYData{
		Vertices: make([]core.Vec3, 0, min(header.VertexCount, maxPreallocate)),
		Faces:    make([]int, 0, 3*min(header.FaceCount, maxPreallocate)),
	}

	xi := indexOfProperty(header.VertexProps, "x")
	yi := indexOfProperty(header.VertexProps, "y")
	zi := indexOfProperty(header.VertexProps, "z")
	row := make([]float64, len(header.VertexProps))

	for v := 0; v < header.VertexCount; v++ {
		for p, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipList(values, prop); err != nil {
					return nil, fmt.Errorf("vertex %d: %w", v, err)
				}
				continue
			}
			value, err := values.read(prop.Type)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", v, err)
			}
			row[p] = value
		}
		data.Vertices = append(data.Vertices, core.NewVec3(row[xi], row[yi], row[zi]))
	}

	indexProp := faceIndexProperty(header.FaceProps)
	for f := 0; f < header.FaceCount; f++ {
		for p, prop := range header.FaceProps {
			if p != indexProp {
				var err error
				if prop.IsList {
					err = skipList(values, prop)
				} else {
					_, err = values.read(prop.Type)
				}
				if err != nil {
					return nil, fmt.Errorf("face %d: %w", f, err)
				}
				continue
			}

			indices, err := readList(values, prop)
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", f, err)
			}
			if len(indices) < 3 {
				return nil, fmt.Errorf("face %d has %d vertices", f, len(indices))
			}
			for _, idx := range indices {
				if idx < 0 || idx >= header.VertexCount {
					return nil, fmt.Errorf("face %d references vertex %d, file has %d", f, idx, header.VertexCount)
				}
			}
			// Fan triangulation
			for i := 1; i+1 < len(indices); i++ {
				data.Faces = append(data.Faces, indices[0], indices[i], indices[i+1])
			}
		}
	}

	return data, nil
}

func readList(values valueReader, prop PLYProperty) ([]int, error) {
	count, err := values.read(prop.ListType)
	if err != nil {
		return nil, err
	}
	if count < 0 || count > maxListLength || count != math.Trunc(count) {
		return nil, fmt.Errorf("invalid %s list length %v", prop.Name, count)
	}
	list := make([]int, 0, int(count))
	for i := 0; i < int(count); i++ {
		value, err := values.read(prop.DataType)
		if err != nil {
			return nil, err
		}
		list = append(list, int(value))
	}
	return list, nil
}

func skipList(values valueReader, prop PLYProperty) error {
	_, err := readList(values, prop)
	return err
}

func indexOfProperty(props []PLYProperty, name string) int {
	for i, prop := range props {
		if prop.Name == name && !prop.IsList {
			return i
		}
	}
	return -1
}

func faceIndexProperty(props []PLYProperty) int {
	for i, prop := range props {
		if prop.IsList && (prop.Name == "vertex_indices" || prop.Name == "vertex_index") {
			return i
		}
	}
	return -1
}

// typeSize returns the byte size of a PLY scalar type, or 0 if unknown
func typeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

// valueReader yields the next scalar of the body as a float64
type valueReader interface {
	read(dataType string) (float64, error)
}

type binaryValueReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValueReader) read(dataType string) (float64, error) {
	size := typeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unknown type %q", dataType)
	}
	if _, err := io.ReadFull(b.r, b.buf[:size]); err != nil {
		return 0, err
	}

	raw := b.buf[:size]
	switch dataType {
	case "char", "int8":
		return float64(int8(raw[0])), nil
	case "uchar", "uint8":
		return float64(raw[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(raw))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(raw)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(raw))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(raw)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(raw))), nil
	default:
		return math.Float64frombits(b.order.Uint64(raw)), nil
	}
}

type asciiValueReader struct {
	scanner *bufio.Scanner
}

func (a *asciiValueReader) read(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	value, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, a.scanner.Text())
	}
	return value, nil
}
