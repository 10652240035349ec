package export

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/flywave/go-muexport/cfgnode"
)

// StripNNN drops the ".NNN" suffix the modeling tool appends to
// duplicate names.
func StripNNN(name string) string {
	i := len(name) - 4
	if i < 0 || name[i] != '.' {
		return name
	}
	for _, c := range name[i+1:] {
		if c < '0' || c > '9' {
			return name
		}
	}
	return name[:i]
}

func swapyz(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[2], v[1]}
}

// swizzleq converts a rotation to the engine's (x, y, z, w) order and
// handedness.
func swizzleq(q mgl64.Quat) [4]float64 {
	return [4]float64{q.V[0], q.V[2], q.V[1], -q.W}
}

func vectorStr(vs ...float64) string {
	return cfgnode.FormatVector(vs...)
}

func vec3Str(v mgl64.Vec3) string {
	return vectorStr(v[0], v[1], v[2])
}
