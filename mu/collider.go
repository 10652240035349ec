package mu

import "github.com/flywave/go3d/vec3"

// Collider is attached to the node that owned the collider object.
type Collider interface {
	Entry() EntryType
	write(w *Writer)
}

type MeshCollider struct {
	IsTrigger bool
	Convex    bool
	Mesh      *Mesh
}

func (c *MeshCollider) Entry() EntryType { return EntryMeshCollider2 }

func (c *MeshCollider) write(w *Writer) {
	w.Entry(c.Entry())
	w.Bool(c.IsTrigger)
	w.Bool(c.Convex)
	c.Mesh.write(w)
}

type SphereCollider struct {
	IsTrigger bool
	Radius    float32
	Center    vec3.T
}

func (c *SphereCollider) Entry() EntryType { return EntrySphereCollider2 }

func (c *SphereCollider) write(w *Writer) {
	w.Entry(c.Entry())
	w.Bool(c.IsTrigger)
	w.Float(c.Radius)
	w.Vector(c.Center)
}

type CapsuleCollider struct {
	IsTrigger bool
	Radius    float32
	Height    float32
	// Direction is the engine axis index: 0 = X, 1 = Y, 2 = Z.
	Direction int32
	Center    vec3.T
}

func (c *CapsuleCollider) Entry() EntryType { return EntryCapsuleCollider2 }

func (c *CapsuleCollider) write(w *Writer) {
	w.Entry(c.Entry())
	w.Bool(c.IsTrigger)
	w.Float(c.Radius)
	w.Float(c.Height)
	w.Int(c.Direction)
	w.Vector(c.Center)
}

type BoxCollider struct {
	IsTrigger bool
	Size      vec3.T
	Center    vec3.T
}

func (c *BoxCollider) Entry() EntryType { return EntryBoxCollider2 }

func (c *BoxCollider) write(w *Writer) {
	w.Entry(c.Entry())
	w.Bool(c.IsTrigger)
	w.Vector(c.Size)
	w.Vector(c.Center)
}

type Spring struct {
	Spring         float32
	Damper         float32
	TargetPosition float32
}

type Friction struct {
	ExtremumSlip   float32
	ExtremumValue  float32
	AsymptoteSlip  float32
	AsymptoteValue float32
	Stiffness      float32
}

func (f *Friction) write(w *Writer) {
	w.Floats(f.ExtremumSlip, f.ExtremumValue, f.AsymptoteSlip, f.AsymptoteValue, f.Stiffness)
}

type WheelCollider struct {
	Mass               float32
	Radius             float32
	SuspensionDistance float32
	Center             vec3.T
	SuspensionSpring   Spring
	ForwardFriction    Friction
	SidewaysFriction   Friction
}

func (c *WheelCollider) Entry() EntryType { return EntryWheelCollider }

func (c *WheelCollider) write(w *Writer) {
	w.Entry(c.Entry())
	w.Float(c.Mass)
	w.Float(c.Radius)
	w.Float(c.SuspensionDistance)
	w.Vector(c.Center)
	w.Floats(c.SuspensionSpring.Spring, c.SuspensionSpring.Damper, c.SuspensionSpring.TargetPosition)
	c.ForwardFriction.write(w)
	c.SidewaysFriction.write(w)
}
