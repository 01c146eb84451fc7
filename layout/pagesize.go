package layout

// Paper presets in points, portrait orientation.
var pagePresets = map[string][2]float64{
	"4A0": {4768, 6741},
	"2A0": {3370, 4768},

	"A0":  {2384, 3370},
	"A1":  {1684, 2384},
	"A2":  {1191, 1684},
	"A3":  {842, 1191},
	"A4":  {595, 842},
	"A5":  {420, 595},
	"A6":  {297, 420},
	"A7":  {210, 297},
	"A8":  {148, 210},
	"A9":  {105, 148},
	"A10": {74, 105},

	"B0":  {2835, 4008},
	"B1":  {2004, 2835},
	"B2":  {1417, 2004},
	"B3":  {1001, 1417},
	"B4":  {709, 1001},
	"B5":  {499, 709},
	"B6":  {354, 499},
	"B7":  {249, 354},
	"B8":  {176, 249},
	"B9":  {125, 176},
	"B10": {88, 125},

	"C0":  {2599, 3677},
	"C1":  {1837, 2599},
	"C2":  {1298, 1837},
	"C3":  {918, 1298},
	"C4":  {649, 918},
	"C5":  {459, 649},
	"C6":  {323, 459},
	"C7":  {230, 323},
	"C8":  {162, 230},
	"C9":  {113, 162},
	"C10": {79, 113},

	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
}

// DefaultPageSize is used by pages that never set a size.
const DefaultPageSize = "A4"

// PresetSize returns the portrait size of a preset in points.
func PresetSize(name string) (width, height float64, ok bool) {
	s, ok := pagePresets[name]
	return s[0], s[1], ok
}
