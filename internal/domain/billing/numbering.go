package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// invoiceNumberRe acepta exclusivamente el patrón INV-<dígitos>, anclado y
// case-insensitive. Números con otro formato (CUSTOM-001, ABC123) no participan
// en la secuencia: ni la bloquean ni la influyen.
var invoiceNumberRe = regexp.MustCompile(`(?i)^INV-(\d+)$`)

// NextInvoiceNumber deriva el siguiente número secuencial a partir de los
// números existentes: max(sufijos de los INV-<n>) + 1, o INV-001 si no hay
// ninguno conforme. El sufijo se formatea con cero-padding a mínimo 3 dígitos
// (1 -> INV-001, 1000 -> INV-1000, nunca se trunca).
func NextInvoiceNumber(existing []string) string {
	max := 0
	for _, num := range existing {
		m := invoiceNumberRe.FindStringSubmatch(num)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// Sufijo demasiado largo para int; se ignora como no conforme.
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("INV-%03d", max+1)
}

// IsInvoiceNumberUnique indica si candidate no colisiona (case-insensitive)
// con el número de ninguna factura de la colección, exceptuando la factura
// cuyo ID sea excludeID (la que se está editando). excludeID vacío no excluye nada.
func IsInvoiceNumberUnique(candidate string, invoices []*entity.Invoice, excludeID string) bool {
	for _, inv := range invoices {
		if excludeID != "" && inv.ID == excludeID {
			continue
		}
		if strings.EqualFold(inv.InvoiceNumber, candidate) {
			return false
		}
	}
	return true
}
