package rules

import (
	"strings"

	"github.com/sells-group/shipment-cli/internal/model"
)

// Product lines derived from the validated route. All handled shipments
// are sea LCL; the direction follows which side of the route is an Indian
// port (UN/LOCODE country prefix "IN").
const (
	ProductLineSeaImportLCL = "pl_sea_import_lcl"
	ProductLineSeaExportLCL = "pl_sea_export_lcl"
)

const indiaPrefix = "IN"

// DetermineProductLine derives the product line from the resolved port
// pair. Inputs must be validated canonical codes or the UnknownPort
// sentinel — raw text never reaches this function. Pure: the same pair
// always yields the same line within a catalog version.
func DetermineProductLine(originPort, destinationPort string) string {
	if isIndianPort(destinationPort) {
		return ProductLineSeaImportLCL
	}
	if isIndianPort(originPort) {
		return ProductLineSeaExportLCL
	}
	return model.Unknown
}

func isIndianPort(code string) bool {
	return code != model.UnknownPort && strings.HasPrefix(code, indiaPrefix)
}
