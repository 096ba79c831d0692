package service

import "strings"

// OPT classes used to weigh category compatibility when scoring
const (
	pestClassInsect   = "insect"
	pestClassFungus   = "fungus"
	pestClassBacteria = "bacteria"
	pestClassWeed     = "weed"
)

// pestClassIndex maps commonly reported OPT names (normalized) to their
// class. Names outside this index still match on overlap but with reduced
// weight, since category compatibility cannot be established.
var pestClassIndex = map[string]string{
	// Insects
	"wereng":          pestClassInsect,
	"wereng coklat":   pestClassInsect,
	"penggerek batang": pestClassInsect,
	"walang sangit":   pestClassInsect,
	"ulat grayak":     pestClassInsect,
	"kutu daun":       pestClassInsect,
	"thrips":          pestClassInsect,
	"lalat buah":      pestClassInsect,
	"belalang":        pestClassInsect,
	"tungau":          pestClassInsect,
	"penggerek buah":  pestClassInsect,
	// Fungi
	"blas":           pestClassFungus,
	"busuk batang":   pestClassFungus,
	"antraknosa":     pestClassFungus,
	"bercak daun":    pestClassFungus,
	"embun tepung":   pestClassFungus,
	"karat daun":     pestClassFungus,
	"layu fusarium":  pestClassFungus,
	"busuk buah":     pestClassFungus,
	// Bacteria
	"hawar daun bakteri": pestClassBacteria,
	"kresek":             pestClassBacteria,
	"layu bakteri":       pestClassBacteria,
	"busuk lunak":        pestClassBacteria,
	// Weeds
	"gulma":        pestClassWeed,
	"alang-alang":  pestClassWeed,
	"teki":         pestClassWeed,
	"eceng gondok": pestClassWeed,
	"rumput liar":  pestClassWeed,
}

// categoryClass maps each medicine category to the OPT class it treats
var categoryClass = map[string]string{
	"insektisida": pestClassInsect,
	"fungisida":   pestClassFungus,
	"herbisida":   pestClassWeed,
	"bakterisida": pestClassBacteria,
}

// Per-pest weights: full credit for a compatible match, near-zero for an
// incompatible one (an insecticide does not treat a fungal complaint even on
// name overlap), half credit when the pest class is unknown.
const (
	weightCompatible   = 1.0
	weightIncompatible = 0.1
	weightUnknownClass = 0.5
)

// MatchScore computes the compatibility of a medicine against the reported
// pest list as a percentage in [0,100]. Every requested pest found in the
// medicine's declared target list contributes a category-dependent weight;
// pests absent from the target list contribute nothing. Full overlap with a
// compatible category yields 100, disjoint lists yield 0.
func MatchScore(targetPests, requestedPests []string, category string) float64 {
	if len(requestedPests) == 0 {
		return 0
	}

	targets := make(map[string]bool, len(targetPests))
	for _, p := range targetPests {
		targets[normalizePest(p)] = true
	}

	treatedClass := categoryClass[strings.ToLower(strings.TrimSpace(category))]

	var sum float64
	for _, p := range requestedPests {
		name := normalizePest(p)
		if !targets[name] {
			continue
		}
		class, known := pestClassIndex[name]
		switch {
		case !known:
			sum += weightUnknownClass
		case class == treatedClass:
			sum += weightCompatible
		default:
			sum += weightIncompatible
		}
	}

	return sum / float64(len(requestedPests)) * 100
}

func normalizePest(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
