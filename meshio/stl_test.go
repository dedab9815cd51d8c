package meshio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/tessera3d/mdc"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestWriteSTLHeaderCount(t *testing.T) {
	mesh := mdc.Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Faces:    [][3]int{{0, 1, 2}, {0, 2, 3}},
	}

	var buf bytes.Buffer
	if err := WriteSTL(&buf, mesh); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}

	const headerSize = 84
	const triangleSize = 50
	want := headerSize + triangleSize*len(mesh.Faces)
	if buf.Len() != want {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), want)
	}

	var count uint32
	if err := binary.Read(bytes.NewReader(buf.Bytes()[80:84]), binary.LittleEndian, &count); err != nil {
		t.Fatalf("reading count: %v", err)
	}
	if int(count) != len(mesh.Faces) {
		t.Errorf("header count = %d, want %d", count, len(mesh.Faces))
	}
}

func TestWriteSTLRejectsEmptyMesh(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, mdc.Mesh{}); err == nil {
		t.Fatal("expected error for empty mesh")
	}
}

func TestWriteSTLFaceNormalFromGeometry(t *testing.T) {
	mesh := mdc.Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}},
		Faces:    [][3]int{{0, 1, 2}},
	}
	var buf bytes.Buffer
	if err := WriteSTL(&buf, mesh); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}

	data := buf.Bytes()[84:134]
	var nx, ny, nz uint32
	binary.Read(bytes.NewReader(data[0:4]), binary.LittleEndian, &nx)
	binary.Read(bytes.NewReader(data[4:8]), binary.LittleEndian, &ny)
	binary.Read(bytes.NewReader(data[8:12]), binary.LittleEndian, &nz)
	// (1,0,0) x (0,1,0) = (0,0,1): the only nonzero component should be Z.
	if math.Float32frombits(nz) == 0 {
		t.Errorf("expected a nonzero Z normal component, got nx=%d ny=%d nz=%d", nx, ny, nz)
	}
}
