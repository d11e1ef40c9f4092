// Package formats parses the external surface syntaxes of spec §6.1 (CFN,
// legacy WCSP, UAI/LG, WCNF/CNF, QPBO, OPB) into calls on the
// github.com/crillab/gowcsp/wcsp builder API.
//
// Every parser in this package follows the same discipline (spec §4.4):
// read tokens lazily from a line-buffered reader, strip comments, build
// variables before constraints, and accumulate negCost from every cost
// table as it is posted. The upper bound is passed to wcsp.WCSP.UpdateUb
// after the last cost function by the CFN and WCNF/CNF parsers, before the
// first one by the QPBO parser, and both before and after by the legacy
// WCSP parser; the UAI/LG and OPB parsers do not call UpdateUb.
//
//	f, err := os.Open("4queens.wcsp")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer f.Close()
//	w, err := formats.ParseLegacy(f, wcsp.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(w.Lb(), w.Ub())
//
// Decompression, command-line option handling and the search driver that
// would consume the resulting wcsp.WCSP are out of scope: this package
// only builds the network.
package formats
