package viewer

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a position, direction, or XYZ Euler rotation. It travels as a
// [x, y, z] array.
type Vec3 struct {
	r3.Vec
}

// V builds a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, o.Vec)}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, o.Vec)}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{Vec: r3.Scale(f, v.Vec)}
}

// Lerp moves v toward to by fraction a.
func (v Vec3) Lerp(to Vec3, a float64) Vec3 {
	return v.Add(to.Sub(v).Scale(a))
}

// Distance is the euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	return r3.Norm(r3.Sub(v.Vec, o.Vec))
}

func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Array())
}

// UnmarshalJSON accepts [x, y, z] and the {"x", "y", "z"} object form used
// by stored camera states.
func (v *Vec3) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) != 3 {
			return fmt.Errorf("vector needs 3 components, got %d", len(arr))
		}
		*v = V(arr[0], arr[1], arr[2])
		return nil
	}

	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
		Z *float64 `json:"z"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode vector: %w", err)
	}
	if obj.X == nil || obj.Y == nil || obj.Z == nil {
		return fmt.Errorf("vector object needs x, y and z")
	}
	*v = V(*obj.X, *obj.Y, *obj.Z)
	return nil
}
