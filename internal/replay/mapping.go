package replay

import "fmt"

// Static (spec, color) translation tables into the generic ledger's
// product and process identifiers. Each level of the chain uses its own
// table; a pair absent from the table it needs fails that node with
// MappingMissingError.

type specColor struct {
	Spec  int
	Color int
}

type MappingMissingError struct {
	Spec  int
	Color int
	Level string
}

func (e *MappingMissingError) Error() string {
	return fmt.Sprintf("no %s mapping for spec %d color %d", e.Level, e.Spec, e.Color)
}

// Work-order root lots and their processing shipments.
var rootProduct = map[specColor]string{
	{1, 1}: "K748", {1, 2}: "K753", {1, 3}: "K748", {1, 4}: "K748", {1, 5}: "K748",
	{2, 1}: "K749", {2, 2}: "K754", {2, 3}: "K749", {2, 4}: "K749", {2, 5}: "K749",
	{3, 1}: "K750", {3, 2}: "K755", {3, 3}: "K750", {3, 4}: "K750", {3, 5}: "K750",
	{4, 1}: "K751", {4, 2}: "K756", {4, 3}: "K751", {4, 4}: "K751", {4, 5}: "K751",
}

var rootProcess = map[specColor]int{
	{1, 1}: 252, {1, 2}: 247, {1, 3}: 267, {1, 4}: 262, {1, 5}: 257,
	{2, 1}: 253, {2, 2}: 248, {2, 3}: 268, {2, 4}: 263, {2, 5}: 258,
	{3, 1}: 254, {3, 2}: 249, {3, 3}: 269, {3, 4}: 264, {3, 5}: 259,
	{4, 1}: 255, {4, 2}: 250, {4, 3}: 270, {4, 4}: 265, {4, 5}: 260,
}

// Lots produced from stage-1 returns.
var stage1Product = map[specColor]string{
	{1, 1}: "2252", {1, 2}: "2247", {1, 3}: "2267", {1, 4}: "2262", {1, 5}: "2257",
	{2, 1}: "2253", {2, 2}: "2248", {2, 3}: "2268", {2, 4}: "2263", {2, 5}: "2258",
	{3, 1}: "2254", {3, 2}: "2249", {3, 3}: "2269", {3, 4}: "2264", {3, 5}: "2259",
	{4, 1}: "2255", {4, 2}: "2250", {4, 3}: "2270", {4, 4}: "2265", {4, 5}: "2260",
}

// Interim shipments carry both a product and a process identifier.
type productProcess struct {
	ProductID string
	ProcessID int
}

var interimShipment = map[specColor]productProcess{
	{1, 1}: {"2252", 26}, {1, 2}: {"2247", 27}, {1, 3}: {"2267", 28}, {1, 4}: {"2262", 30}, {1, 5}: {"2257", 29},
	{2, 1}: {"2253", 31}, {2, 2}: {"2248", 32}, {2, 3}: {"2268", 33}, {2, 4}: {"2263", 35}, {2, 5}: {"2258", 34},
	{3, 1}: {"2254", 36}, {3, 2}: {"2249", 37}, {3, 3}: {"2269", 38}, {3, 4}: {"2264", 40}, {3, 5}: {"2259", 39},
	{4, 1}: {"2255", 41}, {4, 2}: {"2250", 42}, {4, 3}: {"2270", 43}, {4, 4}: {"2265", 45}, {4, 5}: {"2260", 44},
}

// Lots produced from stage-2 returns, and the final customer shipments
// drawn from them (the two tables carry the same values in the current
// configuration but are looked up independently).
var stage2Product = map[specColor]string{
	{1, 1}: "2026", {1, 2}: "2027", {1, 3}: "2028", {1, 4}: "2030", {1, 5}: "2029",
	{2, 1}: "2031", {2, 2}: "2032", {2, 3}: "2033", {2, 4}: "2035", {2, 5}: "2034",
	{3, 1}: "2036", {3, 2}: "2037", {3, 3}: "2038", {3, 4}: "2040", {3, 5}: "2039",
	{4, 1}: "2041", {4, 2}: "2042", {4, 3}: "2043", {4, 4}: "2045", {4, 5}: "2044",
}

var finalShipmentProduct = map[specColor]string{
	{1, 1}: "2026", {1, 2}: "2027", {1, 3}: "2028", {1, 4}: "2030", {1, 5}: "2029",
	{2, 1}: "2031", {2, 2}: "2032", {2, 3}: "2033", {2, 4}: "2035", {2, 5}: "2034",
	{3, 1}: "2036", {3, 2}: "2037", {3, 3}: "2038", {3, 4}: "2040", {3, 5}: "2039",
	{4, 1}: "2041", {4, 2}: "2042", {4, 3}: "2043", {4, 4}: "2045", {4, 5}: "2044",
}
