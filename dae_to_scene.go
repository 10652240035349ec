package asset3d

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	dae "github.com/flywave/go-collada"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/flywave/go-muexport/internal/logger"
	"github.com/flywave/go-muexport/scene"
)

// DaeToScene imports the geometry nodes of the visual scenes of a COLLADA
// document. Geometry is kept in document axes.
type DaeToScene struct {
	baseDir   string
	texMap    map[string]string
	mtlMap    map[string]*dae.Material
	effectMap map[string]*dae.Effect
	geoMap    map[string]*dae.Geometry
	meshes    map[string]*scene.Mesh
	mtls      map[string]*scene.Material
}

func (cv *DaeToScene) Convert(path string) (*scene.Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	collada, err := dae.LoadDocumentFromReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse collada")
	}
	cv.baseDir = filepath.Dir(path)
	cv.index(collada)

	sc := scene.New(sceneName(path))
	nodes := make(map[string]*dae.Node)
	for _, lib := range collada.LibraryVisualScenes {
		for _, vs := range lib.VisualScene {
			for _, nd := range vs.Node {
				nodes[string(nd.Id)] = nd
			}
		}
	}
	for _, lib := range collada.LibraryVisualScenes {
		for _, vs := range lib.VisualScene {
			for i, nd := range vs.Node {
				obj, err := cv.convertNode(nd, nodes, i)
				if err != nil {
					return nil, err
				}
				if obj != nil {
					sc.AddRoot(obj)
				}
			}
		}
	}
	return sc, nil
}

func (cv *DaeToScene) index(collada *dae.Collada) {
	cv.texMap = make(map[string]string)
	for _, libimg := range collada.LibraryImages {
		for _, img := range libimg.Image {
			uri := strings.TrimPrefix(img.InitFrom.Ref.Ref, "file://")
			cv.texMap[string(img.HasId.Id)] = resolvePath(cv.baseDir, uri)
		}
	}
	cv.mtlMap = make(map[string]*dae.Material)
	for _, m := range collada.LibraryMaterials {
		for _, mt := range m.Material {
			cv.mtlMap[string(mt.Id)] = mt
		}
	}
	cv.effectMap = make(map[string]*dae.Effect)
	for _, ef := range collada.LibraryEffects {
		for _, e := range ef.Effect {
			cv.effectMap[string(e.Id)] = e
		}
	}
	cv.geoMap = make(map[string]*dae.Geometry)
	for _, g := range collada.LibraryGeometries {
		for _, geo := range g.Geometry {
			cv.geoMap[string(geo.Id)] = geo
		}
	}
	cv.meshes = make(map[string]*scene.Mesh)
	cv.mtls = make(map[string]*scene.Material)
}

// convertNode returns nil for nodes without geometry. A node that only
// instances another node shares that node's mesh.
func (cv *DaeToScene) convertNode(nd *dae.Node, nodes map[string]*dae.Node, i int) (*scene.Object, error) {
	geoNode := nd
	if len(nd.InstanceGeometry) == 0 {
		for _, inst := range nd.InstanceNode {
			if target, ok := nodes[inst.Url.GetId()]; ok && len(target.InstanceGeometry) > 0 {
				geoNode = target
				break
			}
		}
	}
	if len(geoNode.InstanceGeometry) == 0 {
		return nil, nil
	}
	name := string(nd.Id)
	if name == "" {
		name = fmt.Sprintf("node%d", i)
	}

	var geoIds []string
	for _, g := range geoNode.InstanceGeometry {
		geoIds = append(geoIds, g.Url.GetId())
	}
	mh, err := cv.convertGeometries(geoIds)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to convert node %q", name)
	}
	obj := scene.NewObject(name, mh)
	setTransform(obj, nodeMatrix(nd))
	return obj, nil
}

func parseFloats(strs []string) []float64 {
	out := make([]float64, len(strs))
	for i, s := range strs {
		out[i], _ = strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	return out
}

func parseInts(strs []string) []int {
	out := make([]int, len(strs))
	for i, s := range strs {
		v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		out[i] = int(v)
	}
	return out
}

// nodeMatrix composes the local transform of nd. COLLADA matrices are
// row-major and rotations are in degrees.
func nodeMatrix(nd *dae.Node) mgl64.Mat4 {
	if len(nd.Matrix) > 0 {
		m := mgl64.Ident4()
		for _, mat := range nd.Matrix {
			var ay [16]float64
			copy(ay[:], parseFloats(mat.ToSlice()))
			m = m.Mul4(mgl64.Mat4(ay).Transpose())
		}
		return m
	}
	m := mgl64.Ident4()
	for _, t := range nd.Translate {
		v := parseFloats(t.ToSlice())
		if len(v) >= 3 {
			m = m.Mul4(mgl64.Translate3D(v[0], v[1], v[2]))
		}
	}
	for _, r := range nd.Rotate {
		v := parseFloats(r.ToSlice())
		if len(v) >= 4 {
			m = m.Mul4(mgl64.HomogRotate3D(mgl64.DegToRad(v[3]), mgl64.Vec3{v[0], v[1], v[2]}))
		}
	}
	for _, s := range nd.Scale {
		v := parseFloats(s.ToSlice())
		if len(v) >= 3 {
			m = m.Mul4(mgl64.Scale3D(v[0], v[1], v[2]))
		}
	}
	return m
}

// daeInputs locates the attribute streams of one primitive group.
type daeInputs struct {
	stride    int
	vertexOff int
	normalOff int
	uvOff     int
	normals   []float64
	normStr   int
	uvs       []float64
	uvStr     int
}

type daeSource struct {
	data   []float64
	stride int
}

func (cv *DaeToScene) convertGeometries(ids []string) (*scene.Mesh, error) {
	key := strings.Join(ids, "|")
	if mh, ok := cv.meshes[key]; ok {
		return mh, nil
	}
	out := &scene.Mesh{Name: ids[0]}
	for _, id := range ids {
		geo, ok := cv.geoMap[id]
		if !ok || geo.Mesh == nil {
			return nil, errors.Errorf("geometry %q not found", id)
		}
		if err := cv.addGeometry(out, geo.Mesh); err != nil {
			return nil, errors.Wrapf(err, "geometry %q", id)
		}
	}
	if len(out.Normals) != len(out.Vertices) {
		out.Normals = nil
	}
	if len(out.UVs) != len(out.Vertices) {
		out.UVs = nil
	}
	cv.meshes[key] = out
	return out, nil
}

func (cv *DaeToScene) addGeometry(out *scene.Mesh, mh *dae.Mesh) error {
	srcs := make(map[string]daeSource)
	for _, src := range mh.Source {
		if src.FloatArray == nil {
			continue
		}
		stride := int(src.TechniqueCommon.Accessor.Stride)
		if stride <= 0 {
			stride = 1
		}
		srcs[string(src.Id)] = daeSource{data: parseFloats(src.FloatArray.ToSlice()), stride: stride}
	}
	var positions, vnormals daeSource
	for _, in := range mh.Vertices.Input {
		switch in.Semantic {
		case "POSITION":
			positions = srcs[in.Source.GetId()]
		case "NORMAL":
			vnormals = srcs[in.Source.GetId()]
		}
	}
	if positions.data == nil {
		return errors.New("mesh has no positions")
	}

	for _, p := range mh.Polylist {
		in := collectInputs(p.Input, srcs)
		counts := parseInts(p.VCount.ToSlice())
		cv.addPolygons(out, in, positions, vnormals, counts, parseInts(p.P.ToSlice()), p.Material)
	}
	for _, t := range mh.Triangles {
		cv.addTrig(out, t, srcs, positions, vnormals)
	}
	if len(mh.Trifans) > 0 || len(mh.Tristrips) > 0 {
		logger.Warn("collada triangle fans and strips are not imported")
	}
	return nil
}

func (cv *DaeToScene) addTrig(out *scene.Mesh, trg dae.Trig, srcs map[string]daeSource, positions, vnormals daeSource) {
	in := collectInputs(trg.GetSharedInput(), srcs)
	counts := make([]int, int(trg.GetCount()))
	for i := range counts {
		counts[i] = 3
	}
	cv.addPolygons(out, in, positions, vnormals, counts, parseInts(trg.GetP().ToSlice()), trg.GetMaterial())
}

func collectInputs(inputs []*dae.InputShared, srcs map[string]daeSource) daeInputs {
	in := daeInputs{vertexOff: -1, normalOff: -1, uvOff: -1}
	for _, ipt := range inputs {
		off := int(ipt.Offset)
		if off+1 > in.stride {
			in.stride = off + 1
		}
		src := srcs[ipt.Source.GetId()]
		switch ipt.Semantic {
		case "VERTEX":
			in.vertexOff = off
		case "NORMAL":
			in.normalOff, in.normals, in.normStr = off, src.data, src.stride
		case "TEXCOORD":
			if in.uvOff < 0 {
				in.uvOff, in.uvs, in.uvStr = off, src.data, src.stride
			}
		}
	}
	return in
}

// addPolygons expands every corner into its own vertex and fans polygons
// into triangles. Each call adds one submesh.
func (cv *DaeToScene) addPolygons(out *scene.Mesh, in daeInputs, positions, vnormals daeSource, counts, p []int, material string) {
	if in.vertexOff < 0 || in.stride == 0 {
		return
	}
	corner := func(c int) {
		base := c * in.stride
		vi := p[base+in.vertexOff]
		out.Vertices = append(out.Vertices, vec3At(positions, vi))
		switch {
		case in.normalOff >= 0:
			out.Normals = append(out.Normals, vec3At(daeSource{in.normals, in.normStr}, p[base+in.normalOff]))
		case vnormals.data != nil:
			out.Normals = append(out.Normals, vec3At(vnormals, vi))
		}
		if in.uvOff >= 0 {
			ui := p[base+in.uvOff] * in.uvStr
			if ui+1 < len(in.uvs) {
				out.UVs = append(out.UVs, vec2.T{float32(in.uvs[ui]), float32(in.uvs[ui+1])})
			}
		}
	}

	var sub []uint32
	c := 0
	for _, n := range counts {
		if (c+n)*in.stride > len(p) {
			break
		}
		for k := 1; k+1 < n; k++ {
			for _, ck := range [3]int{c, c + k, c + k + 1} {
				sub = append(sub, uint32(len(out.Vertices)))
				corner(ck)
			}
		}
		c += n
	}
	out.Submeshes = append(out.Submeshes, sub)
	out.Materials = append(out.Materials, cv.convertMaterial(material))
}

func vec3At(src daeSource, i int) vec3.T {
	j := i * src.stride
	if i < 0 || j+2 >= len(src.data) {
		return vec3.T{}
	}
	return vec3.T{float32(src.data[j]), float32(src.data[j+1]), float32(src.data[j+2])}
}

// texture resolves a diffuse texture reference, which names either an
// image or a sampler parameter.
func (cv *DaeToScene) texture(ref string, samplers []string) string {
	for _, id := range append([]string{ref, strings.TrimSuffix(ref, "-sampler")}, samplers...) {
		if f, ok := cv.texMap[id]; ok {
			return f
		}
	}
	return ""
}

func parseColor(strs []string) [4]float64 {
	c := [4]float64{1, 1, 1, 1}
	copy(c[:], parseFloats(strs))
	return c
}

func (cv *DaeToScene) convertMaterial(id string) *scene.Material {
	if mat, ok := cv.mtls[id]; ok {
		return mat
	}
	color := [4]float64{1, 1, 1, 1}
	var tex string
	if mtl, ok := cv.mtlMap[id]; ok {
		if effect, ok := cv.effectMap[mtl.InstanceEffect.Url.GetId()]; ok {
			common := effect.ProfileCommon
			var samplers []string
			for _, param := range common.Newparam {
				if param.Semantic.Value == "DIFFUSECOLOR" && param.Float3 != nil {
					color = parseColor(param.Float3.ToSlice())
				} else if param.Sampler2D != nil {
					samplers = append(samplers, param.Sampler2D.Source.Texture)
				}
			}
			if common.TechniqueFx != nil && common.TechniqueFx.Phone != nil {
				phg := common.TechniqueFx.Phone
				if phg.Diffuse != nil && phg.Diffuse.Texture != nil {
					tex = cv.texture(phg.Diffuse.Texture.Texture, samplers)
				} else if phg.Diffuse != nil && phg.Diffuse.Color != nil {
					color = parseColor(phg.Diffuse.Color.Float3.ToSlice())
				}
			}
		}
	} else if id != "" {
		logger.Debug("collada material not found", zap.String("material", id))
	}
	name := id
	if name == "" {
		name = "default"
	}
	mat := diffuseMaterial(name, color, tex)
	cv.mtls[id] = mat
	return mat
}
