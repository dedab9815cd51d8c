// Package meshio writes mdc.Mesh values to on-disk mesh formats, kept
// separate from evaluation and tessellation.
package meshio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"

	"github.com/tessera3d/mdc"
	"gonum.org/v1/gonum/spatial/r3"
)

// stlHeader is the binary STL layout: an 80-byte blank header followed by
// a triangle count.
type stlHeader struct {
	_     [80]uint8
	Count uint32
}

// stlTriangle is the 50-byte binary STL triangle record. The attribute
// byte count trailer is always written as zero.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
}

func (d *stlTriangle) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(d.Normal[0]))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(d.Normal[1]))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(d.Normal[2]))
	for i, v := range [][3]float32{d.Vertex1, d.Vertex2, d.Vertex3} {
		off := 12 + i*12
		binary.LittleEndian.PutUint32(b[off:off+4], math.Float32bits(v[0]))
		binary.LittleEndian.PutUint32(b[off+4:off+8], math.Float32bits(v[1]))
		binary.LittleEndian.PutUint32(b[off+8:off+12], math.Float32bits(v[2]))
	}
	// attribute byte count, always zero
	b[48] = 0
	b[49] = 0
}

// WriteSTL writes mesh to w in binary STL format. Per-face normals are
// taken as the mean of the face's three vertex normals when present,
// falling back to the geometric face normal otherwise.
func WriteSTL(w io.Writer, mesh mdc.Mesh) error {
	if len(mesh.Faces) == 0 {
		return errors.New("meshio: empty mesh")
	}
	header := stlHeader{Count: uint32(len(mesh.Faces))}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}

	var d stlTriangle
	for _, f := range mesh.Faces {
		v0, v1, v2 := mesh.Vertices[f[0]], mesh.Vertices[f[1]], mesh.Vertices[f[2]]
		n := faceNormal(mesh, f, v0, v1, v2)
		d.Normal = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
		d.Vertex1 = [3]float32{float32(v0.X), float32(v0.Y), float32(v0.Z)}
		d.Vertex2 = [3]float32{float32(v1.X), float32(v1.Y), float32(v1.Z)}
		d.Vertex3 = [3]float32{float32(v2.X), float32(v2.Y), float32(v2.Z)}

		var b [50]byte
		d.put(b[:])
		if _, err := io.Copy(w, bytes.NewReader(b[:])); err != nil {
			return err
		}
	}
	return nil
}

// CreateSTL writes mesh to a new file at path in binary STL format.
func CreateSTL(path string, mesh mdc.Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSTL(file, mesh)
}

func faceNormal(mesh mdc.Mesh, f [3]int, v0, v1, v2 r3.Vec) r3.Vec {
	if len(mesh.Normals) == len(mesh.Vertices) {
		sum := r3.Add(r3.Add(mesh.Normals[f[0]], mesh.Normals[f[1]]), mesh.Normals[f[2]])
		if r3.Norm(sum) != 0 {
			return r3.Unit(sum)
		}
	}
	geo := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
	if r3.Norm(geo) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(geo)
}
