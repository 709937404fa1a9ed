// Package category holds the static tables mapping resource extensions to
// engine resource categories.
package category

import "strings"

// categories maps an extension (including its leading dot) to the category
// label stored in the type tree.
var categories = map[string]string{
	".asm":                  "ResAnimator",
	".anm.hkx":              "ResAnimSkeleton",
	".uv-anim":              "ResAnimTexSrt",
	".material":             "ResMirageMaterial",
	".model":                "ResModel",
	".rfl":                  "ResReflection",
	".skl.hkx":              "ResSkeleton",
	".dds":                  "ResTexture",
	".cemt":                 "ResCyanEffect",
	".cam-anim":             "ResAnimCameraContainer",
	".effdb":                "ResParticleLocation",
	".mat-anim":             "ResAnimMaterial",
	".phy.hkx":              "ResHavokMesh",
	".vis-anim":             "ResAnimVis",
	".scfnt":                "ResScalableFontSet",
	".pt-anim":              "ResAnimTexPat",
	".scene":                "ResScene",
	".pso":                  "ResMiragePixelShader",
	".vso":                  "ResMirageVertexShader",
	".shader-list":          "ResShaderList",
	".vib":                  "ResVibration",
	".bfnt":                 "ResBitmapFont",
	".codetbl":              "ResCodeTable",
	".cnvrs-text":           "ResText",
	".cnvrs-meta":           "ResTextMeta",
	".cnvrs-proj":           "ResTextProject",
	".shlf":                 "ResSHLightField",
	".swif":                 "ResSurfRideProject",
	".gedit":                "ResObjectWorld",
	".fxcol.bin":            "ResFxColFile",
	".path":                 "ResSplinePath",
	".lit-anim":             "ResAnimLightContainer",
	".gism":                 "ResGismoConfig",
	".light":                "ResMirageLight",
	".probe":                "ResProbe",
	".svcol.bin":            "ResSvCol",
	".terrain-instanceinfo": "ResMirageTerrainInstanceInfo",
	".terrain-model":        "ResMirageTerrainModel",
	".model-instanceinfo":   "ResModelInstanceInfo",
	".grass.bin":            "ResTerrainGrassInfo",
	".pss":                  "ResPss",
}

// rootExclusive lists extensions whose resources must stay in the root
// sub-archive.
var rootExclusive = map[string]struct{}{
	".asm":                  {},
	".anm.hkx":              {},
	".cemt":                 {},
	".phy.hkx":              {},
	".skl.hkx":              {},
	".rfl":                  {},
	".bfnt":                 {},
	".effdb":                {},
	".vib":                  {},
	".scene":                {},
	".shlf":                 {},
	".scfnt":                {},
	".codetbl":              {},
	".cnvrs-text":           {},
	".swif":                 {},
	".fxcol.bin":            {},
	".path":                 {},
	".gism":                 {},
	".light":                {},
	".probe":                {},
	".svcol.bin":            {},
	".terrain-instanceinfo": {},
	".model-instanceinfo":   {},
	".grass.bin":            {},
	".shader-list":          {},
	".gedit":                {},
	".cnvrs-meta":           {},
	".cnvrs-proj":           {},
	".pss":                  {},
}

// Split separates a resource name at its first dot. Multi-part extensions
// such as ".grass.bin" stay whole. ok is false when name has no dot.
func Split(name string) (base, ext string, ok bool) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return name, "", false
	}
	return name[:i], name[i:], true
}

// Lookup returns the category label for ext.
func Lookup(ext string) (string, bool) {
	c, ok := categories[ext]
	return c, ok
}

// RootExclusive reports whether resources with ext must live in the root.
func RootExclusive(ext string) bool {
	_, ok := rootExclusive[ext]
	return ok
}
