// Package invoicing contiene el store de facturas: la autoridad única de
// mutación sobre la colección en memoria y su persistencia durable.
//
// Ciclo de vida de una factura: inexistente → activa → eliminada (terminal).
// Toda mutación corre síncrona contra el estado en memoria y dispara después
// una escritura asíncrona de la colección completa que el caller no espera
// (la última escritura exitosa gana). Flush permite esperar las escrituras
// pendientes en tests y en el apagado del proceso.
package invoicing

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/application/ports"
	"github.com/jhoicas/Facturas-api/internal/domain/billing"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
	"github.com/jhoicas/Facturas-api/pkg/logger"
)

// InvoiceStore mantiene la colección de facturas en memoria y la persiste
// completa bajo una única clave del Storage tras cada mutación.
//
// Se construye explícitamente en el arranque y se inyecta donde haga falta:
// nada de estado singleton a nivel de paquete, cada test crea su instancia.
// El mutex existe porque Fiber atiende peticiones concurrentes; las
// operaciones siguen siendo lógicamente secuenciales sobre la colección.
type InvoiceStore struct {
	mu       sync.Mutex
	invoices []*entity.Invoice
	storage  ports.Storage
	key      string
	log      *logger.Logger

	pending sync.WaitGroup
	writeMu sync.Mutex
	seq     uint64 // secuencia del último snapshot tomado (bajo mu)
	written uint64 // secuencia del último snapshot escrito (bajo writeMu)
}

// NewInvoiceStore construye el store. key es la clave fija bajo la cual vive
// la colección serializada.
func NewInvoiceStore(storage ports.Storage, key string, log *logger.Logger) *InvoiceStore {
	return &InvoiceStore{
		invoices: []*entity.Invoice{},
		storage:  storage,
		key:      key,
		log:      log,
	}
}

// LoadAll lee la colección completa desde el almacenamiento durable,
// reemplazando el estado en memoria. Clave ausente ⇒ colección vacía.
// Error de lectura o de parseo ⇒ se registra y la colección queda vacía;
// nunca se propaga para no bloquear el arranque de la aplicación.
func (s *InvoiceStore) LoadAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoices = []*entity.Invoice{}

	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("cargar facturas: error de lectura, se parte de colección vacía")
		return
	}
	if !found {
		return
	}

	var invoices []*entity.Invoice
	if err := json.Unmarshal([]byte(raw), &invoices); err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("cargar facturas: JSON corrupto, se parte de colección vacía")
		return
	}
	if invoices != nil {
		s.invoices = invoices
	}
	s.log.Info().Int("count", len(s.invoices)).Msg("facturas cargadas")
}

// Create construye la factura a partir del formulario: asigna ids nuevos a
// cada línea, deriva subtotales y totales, fija CreatedAt == UpdatedAt y la
// añade al final de la colección. No valida campos ni unicidad del número:
// eso es responsabilidad del caller (capa HTTP) antes de llegar aquí.
func (s *InvoiceStore) Create(in dto.CreateInvoiceRequest) *entity.Invoice {
	s.mu.Lock()

	items := buildItems(in.Items, nil)
	totals := billing.InvoiceTotals(items, in.TaxRate, in.Discount)
	now := time.Now().UTC()

	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		ClientName:    in.ClientName,
		InvoiceNumber: in.InvoiceNumber,
		Date:          in.Date,
		DueDate:       in.DueDate,
		Items:         items,
		Subtotal:      totals.Subtotal,
		TaxRate:       in.TaxRate,
		TaxAmount:     totals.TaxAmount,
		Discount:      in.Discount,
		Total:         totals.Total,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.invoices = append(s.invoices, inv)
	snap := s.snapshotLocked()
	// Clonar antes de soltar el mutex: inv sigue compartido con la colección
	// y otra goroutine podría mutarlo en cuanto se libere.
	out := inv.Clone()
	s.mu.Unlock()

	s.persistAsync(snap)
	return out
}

// Update aplica un merge parcial campo a campo sobre la factura id.
// Si el id no existe, registra un warning y no hace nada (devuelve nil, no
// es un error). Si llegan items, reconstruye las líneas reutilizando el id de
// una línea existente cuando descripción y precio coinciden (la identidad
// sobrevive a ediciones que solo cambian la cantidad). Recalcula los totales
// con el taxRate/discount resultantes del merge y sube UpdatedAt.
func (s *InvoiceStore) Update(id string, in dto.UpdateInvoiceRequest) *entity.Invoice {
	s.mu.Lock()

	inv := s.findLocked(id)
	if inv == nil {
		s.mu.Unlock()
		s.log.Warn().Str("id", id).Msg("actualizar factura: id no encontrado, operación ignorada")
		return nil
	}

	if in.ClientName != nil {
		inv.ClientName = *in.ClientName
	}
	if in.InvoiceNumber != nil {
		inv.InvoiceNumber = *in.InvoiceNumber
	}
	if in.Date != nil {
		inv.Date = *in.Date
	}
	if in.DueDate != nil {
		inv.DueDate = *in.DueDate
	}
	if in.Notes != nil {
		inv.Notes = *in.Notes
	}
	if in.TaxRate != nil {
		inv.TaxRate = *in.TaxRate
	}
	if in.Discount != nil {
		inv.Discount = *in.Discount
	}
	if in.Items != nil {
		inv.Items = buildItems(in.Items, inv.Items)
	}

	totals := billing.InvoiceTotals(inv.Items, inv.TaxRate, inv.Discount)
	inv.Subtotal = totals.Subtotal
	inv.TaxAmount = totals.TaxAmount
	inv.Total = totals.Total
	inv.UpdatedAt = time.Now().UTC()

	snap := s.snapshotLocked()
	out := inv.Clone()
	s.mu.Unlock()

	s.persistAsync(snap)
	return out
}

// Delete elimina la factura id de la colección. Idempotente: si el id no
// existe no pasa nada, pero la colección se persiste igualmente.
func (s *InvoiceStore) Delete(id string) {
	s.mu.Lock()
	kept := s.invoices[:0]
	for _, inv := range s.invoices {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	s.invoices = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persistAsync(snap)
}

// Get devuelve una copia de la factura id, o nil si no existe. Sin efectos.
func (s *InvoiceStore) Get(id string) *entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id).Clone()
}

// List devuelve copias de todas las facturas en orden de inserción.
func (s *InvoiceStore) List() []*entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Invoice, len(s.invoices))
	for i, inv := range s.invoices {
		out[i] = inv.Clone()
	}
	return out
}

// NextInvoiceNumber deriva el siguiente número secuencial INV-NNN a partir
// de los números presentes en la colección.
func (s *InvoiceStore) NextInvoiceNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	numbers := make([]string, len(s.invoices))
	for i, inv := range s.invoices {
		numbers[i] = inv.InvoiceNumber
	}
	return billing.NextInvoiceNumber(numbers)
}

// IsInvoiceNumberUnique indica si number no colisiona con otra factura,
// exceptuando la de id excludeID (vacío = sin exclusión).
func (s *InvoiceStore) IsInvoiceNumberUnique(number, excludeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return billing.IsInvoiceNumberUnique(number, s.invoices, excludeID)
}

// Flush espera a que terminen todas las escrituras pendientes. Lo usan los
// tests (para no depender de timing) y el apagado ordenado del proceso.
func (s *InvoiceStore) Flush() {
	s.pending.Wait()
}

// ── Internos ──────────────────────────────────────────────────────────────────

// findLocked busca por id. Requiere s.mu tomado.
func (s *InvoiceStore) findLocked(id string) *entity.Invoice {
	for _, inv := range s.invoices {
		if inv.ID == id {
			return inv
		}
	}
	return nil
}

// snapshot serializa la colección completa y le asigna un número de
// secuencia. Requiere s.mu tomado: así la goroutine de escritura nunca ve
// estado a medio mutar.
type snapshot struct {
	seq  uint64
	data []byte
}

func (s *InvoiceStore) snapshotLocked() snapshot {
	data, err := json.Marshal(s.invoices)
	if err != nil {
		// No alcanzable con los tipos actuales; se deja constancia por si cambian.
		s.log.Error().Err(err).Msg("serializar facturas")
		return snapshot{}
	}
	s.seq++
	return snapshot{seq: s.seq, data: data}
}

// persistAsync programa la escritura durable del snapshot sin esperar su
// resultado. Las escrituras se serializan con writeMu y un snapshot queda
// descartado si otro más reciente ya fue escrito: la última mutación gana
// aunque las goroutines se planifiquen en otro orden. Un fallo de escritura
// se registra como error: el estado en memoria sigue siendo correcto, solo
// se pierde la garantía de durabilidad de ese cambio (sin reintentos).
func (s *InvoiceStore) persistAsync(snap snapshot) {
	if snap.data == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if snap.seq < s.written {
			return // ya se escribió un snapshot más nuevo
		}
		s.written = snap.seq
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.storage.Set(ctx, s.key, string(snap.data)); err != nil {
			s.log.Error().Err(err).Str("key", s.key).Msg("persistir facturas")
		}
	}()
}

// buildItems materializa las líneas del formulario: deriva el subtotal de
// cada una y asigna id. Con previous no nil (update), reutiliza el id de la
// línea previa cuya descripción y precio coinciden exactamente.
func buildItems(inputs []dto.InvoiceItemInput, previous []entity.InvoiceItem) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		id := ""
		for _, prev := range previous {
			if prev.Description == in.Description && prev.Price.Equal(in.Price) {
				id = prev.ID
				break
			}
		}
		if id == "" {
			id = uuid.New().String()
		}
		items = append(items, entity.InvoiceItem{
			ID:          id,
			Description: in.Description,
			Quantity:    in.Quantity,
			Price:       in.Price,
			Subtotal:    billing.ItemSubtotal(in.Quantity, in.Price),
		})
	}
	return items
}
