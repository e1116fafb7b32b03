package celestrondriver

// modelNames maps the byte the 'm' command returns to a human-readable
// model name. Unknown codes (firmware revisions newer than this table)
// fall back to "Unknown model" rather than failing the driverinfo lookup.
var modelNames = map[byte]string{
	1:  "GPS Series",
	3:  "i-Series",
	4:  "i-Series SE",
	5:  "CGE",
	6:  "Advanced GT",
	7:  "SLT",
	9:  "CPC",
	10: "GT",
	11: "4/5 SE",
	12: "6/8 SE",
	13: "GCE Pro",
	14: "CGEM DX",
	15: "LCM",
	16: "Sky Prodigy",
	17: "CPC Deluxe",
	18: "GT 16",
	19: "StarSeeker",
	20: "Advanced VX",
	21: "Cosmos",
	22: "Evolution",
	23: "CGX",
	24: "CGXL",
	25: "Astrofi",
	26: "SkyWatcher",
}

// ModelName returns the driver-info name for a raw model code.
func ModelName(code byte) string {
	if name, ok := modelNames[code]; ok {
		return name
	}
	return "Unknown model"
}
