package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"github.com/tiendc/go-deepcopy"
)

// LayoutOverride replaces individual fields of a computed placement.
type LayoutOverride struct {
	X *int `json:"x,omitempty"`
	Y *int `json:"y,omitempty"`
	W *int `json:"w,omitempty"`
	H *int `json:"h,omitempty"`
}

func (o LayoutOverride) apply(rect GridRect) GridRect {
	if o.X != nil {
		rect.X = *o.X
	}
	if o.Y != nil {
		rect.Y = *o.Y
	}
	if o.W != nil {
		rect.W = *o.W
	}
	if o.H != nil {
		rect.H = *o.H
	}
	return rect
}

// StylePatch is a partial style config keyed by its JSON field names. A nil
// value clears the field.
type StylePatch map[string]any

// EmbedKind selects the embed flavour created by SaveEmbed.
type EmbedKind string

const (
	EmbedStyled EmbedKind = "styled"
	EmbedSDK    EmbedKind = "sdk"
	EmbedHTML   EmbedKind = "html"
)

// EmbedPayload is the embed-save action body.
type EmbedPayload struct {
	Type         EmbedKind    `json:"type"`
	EmbedCode    string       `json:"embedCode,omitempty"`
	WidgetOID    string       `json:"widgetOid,omitempty"`
	DashboardOID string       `json:"dashboardOid,omitempty"`
	StyleConfig  *StyleConfig `json:"styleConfig,omitempty"`
}

// RegistryOptions configures an InstanceRegistry.
type RegistryOptions struct {
	Lookup    CatalogLookup
	Validator PayloadValidator
	Logger    *log.Logger
	Clock     func() time.Time
}

// InstanceRegistry owns the ordered widget instances of one dashboard.
type InstanceRegistry struct {
	mu        sync.RWMutex
	instances []WidgetInstance
	lookup    CatalogLookup
	validator PayloadValidator
	logger    *log.Logger
	clock     func() time.Time
}

// NewInstanceRegistry builds an empty registry.
func NewInstanceRegistry(opts RegistryOptions) *InstanceRegistry {
	if opts.Lookup == nil {
		opts.Lookup = NewCatalog().Lookup
	}
	if opts.Validator == nil {
		opts.Validator = noopPayloadValidator{}
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &InstanceRegistry{
		instances: []WidgetInstance{},
		lookup:    opts.Lookup,
		validator: opts.Validator,
		logger:    opts.Logger,
		clock:     opts.Clock,
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// Add appends a new instance of typeID placed after the existing ones.
func (r *InstanceRegistry) Add(typeID WidgetTypeID, override LayoutOverride) (WidgetInstance, error) {
	entry, ok := r.lookup(typeID)
	if !ok {
		return WidgetInstance{}, fmt.Errorf("%w: %s", ErrUnknownWidgetType, typeID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextIDLocked(typeID)
	inst := WidgetInstance{
		InstanceID:   id,
		TypeID:       typeID,
		Layout:       override.apply(PlaceNew(id, len(r.instances), entry)),
		WidgetOID:    entry.WidgetOID,
		DashboardOID: entry.DashboardOID,
	}
	inst.Layout.I = id
	r.instances = append(r.instances, inst)
	return cloneInstance(inst), nil
}

// SaveEmbed creates an embed instance, or updates instanceID in place when it
// is non-empty. Styled payloads produce styled-embed instances; sdk and html
// payloads produce plain embeds.
func (r *InstanceRegistry) SaveEmbed(instanceID string, payload EmbedPayload) (WidgetInstance, error) {
	if err := r.validator.ValidateEmbed(payload); err != nil {
		return WidgetInstance{}, err
	}
	typeID := EmbedTypeID
	if payload.Type == EmbedStyled {
		typeID = StyledEmbedTypeID
		if payload.WidgetOID == "" || payload.DashboardOID == "" {
			return WidgetInstance{}, errInvalidEmbedSource
		}
	} else if payload.EmbedCode == "" {
		return WidgetInstance{}, errInvalidEmbedSource
	}

	fill := func(inst *WidgetInstance) {
		if typeID == StyledEmbedTypeID {
			inst.WidgetOID = payload.WidgetOID
			inst.DashboardOID = payload.DashboardOID
			inst.EmbedCode = ""
			if payload.StyleConfig != nil {
				sc := *payload.StyleConfig
				inst.StyleConfig = &sc
			}
			return
		}
		inst.EmbedCode = payload.EmbedCode
		inst.WidgetOID = ""
		inst.DashboardOID = ""
		inst.StyleConfig = nil
	}

	if instanceID != "" {
		r.mu.Lock()
		defer r.mu.Unlock()
		idx := r.indexLocked(instanceID)
		if idx < 0 {
			return WidgetInstance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
		}
		if r.instances[idx].TypeID != typeID {
			return WidgetInstance{}, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, instanceID, r.instances[idx].TypeID)
		}
		fill(&r.instances[idx])
		return cloneInstance(r.instances[idx]), nil
	}

	inst, err := r.Add(typeID, LayoutOverride{})
	if err != nil {
		return WidgetInstance{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(inst.InstanceID)
	fill(&r.instances[idx])
	return cloneInstance(r.instances[idx]), nil
}

// Remove deletes the instance. Unknown ids are ignored.
func (r *InstanceRegistry) Remove(instanceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(instanceID)
	if idx < 0 {
		return false
	}
	r.instances = append(r.instances[:idx], r.instances[idx+1:]...)
	return true
}

// UpdateStyle shallow-merges patch into the instance style config, creating
// one when absent. An unknown id is a caller error: it is logged and ignored.
func (r *InstanceRegistry) UpdateStyle(instanceID string, patch StylePatch) (bool, error) {
	if err := r.validator.ValidateStylePatch(patch); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(instanceID)
	if idx < 0 {
		r.logger.Warn("style update for unknown instance", "instance_id", instanceID)
		return false, nil
	}
	merged, err := mergeStyle(r.instances[idx].StyleConfig, patch)
	if err != nil {
		return false, err
	}
	r.instances[idx].StyleConfig = merged
	return true, nil
}

func mergeStyle(current *StyleConfig, patch StylePatch) (*StyleConfig, error) {
	fields := map[string]any{}
	if current != nil {
		raw, err := json.Marshal(current)
		if err != nil {
			return nil, fmt.Errorf("dashboard: encode style config: %w", err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("dashboard: decode style config: %w", err)
		}
	}
	for key, value := range patch {
		if value == nil {
			delete(fields, key)
			continue
		}
		fields[key] = value
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("dashboard: encode style patch: %w", err)
	}
	out := &StyleConfig{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("dashboard: apply style patch: %w", err)
	}
	return out, nil
}

// UpdateSeriesColor records a colour override for the named series and
// rewrites the matching discovered series entry.
func (r *InstanceRegistry) UpdateSeriesColor(instanceID, seriesName, color string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(instanceID)
	if idx < 0 {
		r.logger.Warn("colour update for unknown instance", "instance_id", instanceID, "series", seriesName)
		return false
	}
	inst := &r.instances[idx]
	if inst.ColorConfig == nil {
		inst.ColorConfig = ColorConfig{}
	}
	inst.ColorConfig[seriesName] = color
	for i := range inst.Series {
		if inst.Series[i].Name == seriesName {
			inst.Series[i].Color = color
		}
	}
	return true
}

// RecordDiscoveredSeries stores the series list once. Later calls, and calls
// for unknown instances, are no-ops.
func (r *InstanceRegistry) RecordDiscoveredSeries(instanceID string, series []SeriesInfo) bool {
	if len(series) == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(instanceID)
	if idx < 0 || len(r.instances[idx].Series) > 0 {
		return false
	}
	r.instances[idx].Series = append([]SeriesInfo(nil), series...)
	return true
}

// ApplyLayoutChange folds a renderer layout report into the registry.
func (r *InstanceRegistry) ApplyLayoutChange(changed []GridRect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = ApplyExternalLayoutChange(r.instances, changed)
}

// Resize replaces one rectangle and returns the re-measure signal, or nil
// when the id is unknown.
func (r *InstanceRegistry) Resize(instanceID string, rect GridRect) *Remeasure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, signal := ApplyResize(r.instances, instanceID, rect)
	r.instances = out
	return signal
}

// Replace swaps the whole instance list atomically. The registry keeps its
// own copy.
func (r *InstanceRegistry) Replace(instances []WidgetInstance) {
	next := cloneInstances(instances)
	for i := range next {
		next[i].Layout.I = next[i].InstanceID
	}
	r.mu.Lock()
	r.instances = next
	r.mu.Unlock()
}

// Snapshot returns a deep copy of the instances in order.
func (r *InstanceRegistry) Snapshot() []WidgetInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneInstances(r.instances)
}

// Instances is an alias of Snapshot.
func (r *InstanceRegistry) Instances() []WidgetInstance {
	return r.Snapshot()
}

// Get returns a copy of one instance.
func (r *InstanceRegistry) Get(instanceID string) (WidgetInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexLocked(instanceID)
	if idx < 0 {
		return WidgetInstance{}, false
	}
	return cloneInstance(r.instances[idx]), true
}

// Len reports the number of instances.
func (r *InstanceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

func (r *InstanceRegistry) indexLocked(instanceID string) int {
	for i := range r.instances {
		if r.instances[i].InstanceID == instanceID {
			return i
		}
	}
	return -1
}

// nextIDLocked derives <type>-<unixMillis>, advancing the millisecond until
// the id is unused.
func (r *InstanceRegistry) nextIDLocked(typeID WidgetTypeID) string {
	ms := r.clock().UnixMilli()
	for {
		id := typeID + "-" + strconv.FormatInt(ms, 10)
		if r.indexLocked(id) < 0 {
			return id
		}
		ms++
	}
}

func cloneInstance(inst WidgetInstance) WidgetInstance {
	var out WidgetInstance
	_ = deepcopy.Copy(&out, &inst)
	return out
}

func cloneInstances(instances []WidgetInstance) []WidgetInstance {
	out := []WidgetInstance{}
	if len(instances) == 0 {
		return out
	}
	_ = deepcopy.Copy(&out, &instances)
	return out
}
