package docxkit

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

const (
	imageRelationshipType      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	packageRelationshipsNS     = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNamespace      = "http://schemas.openxmlformats.org/package/2006/content-types"
	emptyRelationshipsDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<Relationships xmlns="` + packageRelationshipsNS + `"></Relationships>`
)

// MediaRegistrar stores media for the part being rendered and returns the
// relationship id that references it.
type MediaRegistrar interface {
	RegisterMedia(data []byte, mimeType string) (string, error)
}

// mediaStore numbers and collects media across every part of one render.
type mediaStore struct {
	mu         sync.Mutex
	pkg        *Package
	next       int
	files      map[string][]byte
	extensions map[string]string
}

func newMediaStore(pkg *Package) *mediaStore {
	return &mediaStore{
		pkg:        pkg,
		files:      make(map[string][]byte),
		extensions: make(map[string]string),
	}
}

// add stores data under a fresh name in word/media and returns the name.
func (m *mediaStore) add(data []byte, mimeType string) (string, error) {
	ext := getImageExtension(mimeType)
	if ext == "" {
		return "", fmt.Errorf("unsupported media type: %s", mimeType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		m.next++
		name := fmt.Sprintf("word/media/image-%d.%s", m.next, ext)
		if _, taken := m.files[name]; taken || m.pkg.Has(name) {
			continue
		}
		m.files[name] = data
		m.extensions[ext] = mimeType
		return name, nil
	}
}

// output adds the stored media and an updated [Content_Types].xml to out.
func (m *mediaStore) output(out map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.files) == 0 {
		return nil
	}
	for name, data := range m.files {
		out[name] = data
	}

	content, err := m.pkg.ReadPart(contentTypesPart)
	if err != nil {
		return NewDocumentError("read", contentTypesPart, err)
	}
	doc, err := xml.Parse(content)
	if err != nil {
		return NewDocumentError("parse", contentTypesPart, err)
	}
	changed, err := addContentTypeDefaults(doc, m.extensions)
	if err != nil {
		return NewDocumentError("update", contentTypesPart, err)
	}
	if changed {
		out[contentTypesPart] = doc.Bytes()
	}
	return nil
}

// addContentTypeDefaults declares a Default content type for every extension
// not yet declared, inserting them after the existing Defaults.
func addContentTypeDefaults(doc *xml.Document, extensions map[string]string) (bool, error) {
	root := doc.Root()
	if root == nil || root.Name.Local != "Types" {
		return false, fmt.Errorf("missing Types element")
	}
	prefix := root.Name.Prefix

	declared := make(map[string]bool)
	insertAt := 0
	for i, c := range root.Children {
		if c.Kind != xml.ElementNode || c.Name.Local != "Default" {
			continue
		}
		if ext, ok := c.Attr(xml.Name{Local: "Extension"}); ok {
			declared[strings.ToLower(ext)] = true
		}
		insertAt = i + 1
	}

	var defaults []*xml.Node
	for _, ext := range slices.Sorted(maps.Keys(extensions)) {
		if declared[ext] {
			continue
		}
		contentType, ok := extensionContentTypes[ext]
		if !ok {
			contentType = extensions[ext]
		}
		defaults = append(defaults, xml.NewElement(xml.Name{Prefix: prefix, Local: "Default"},
			xml.Attr{Name: xml.Name{Local: "Extension"}, Value: ext},
			xml.Attr{Name: xml.Name{Local: "ContentType"}, Value: contentType},
		))
	}
	if len(defaults) == 0 {
		return false, nil
	}
	if err := doc.ReplaceRange(doc.RootPath(), insertAt, insertAt, defaults...); err != nil {
		return false, err
	}
	return true, nil
}

// partMedia is the registrar handed to the helpers of one part. It is used by
// a single goroutine; only the shared store is locked.
type partMedia struct {
	store    *mediaStore
	part     string
	relsName string
	rels     *xml.Document
	dirty    bool
}

func newPartMedia(store *mediaStore, part string) *partMedia {
	return &partMedia{store: store, part: part, relsName: relationshipsPart(part)}
}

// RegisterMedia implements MediaRegistrar.
func (pm *partMedia) RegisterMedia(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty media data")
	}
	if err := pm.loadRels(); err != nil {
		return "", err
	}
	name, err := pm.store.add(data, mimeType)
	if err != nil {
		return "", err
	}

	root := pm.rels.Root()
	id := nextRelationshipID(root)
	rel := xml.NewElement(xml.Name{Prefix: root.Name.Prefix, Local: "Relationship"},
		xml.Attr{Name: xml.Name{Local: "Id"}, Value: id},
		xml.Attr{Name: xml.Name{Local: "Type"}, Value: imageRelationshipType},
		xml.Attr{Name: xml.Name{Local: "Target"}, Value: relativeTarget(pm.part, name)},
	)
	n := len(root.Children)
	if err := pm.rels.ReplaceRange(pm.rels.RootPath(), n, n, rel); err != nil {
		return "", err
	}
	pm.dirty = true
	return id, nil
}

func (pm *partMedia) loadRels() error {
	if pm.rels != nil {
		return nil
	}
	content := []byte(emptyRelationshipsDocument)
	if pm.store.pkg.Has(pm.relsName) {
		var err error
		if content, err = pm.store.pkg.ReadPart(pm.relsName); err != nil {
			return NewDocumentError("read", pm.relsName, err)
		}
	}
	doc, err := xml.Parse(content)
	if err != nil {
		return NewDocumentError("parse", pm.relsName, err)
	}
	pm.rels = doc
	return nil
}

// output adds the part's relationships to out when media was registered.
func (pm *partMedia) output(out map[string][]byte) {
	if pm.dirty {
		out[pm.relsName] = pm.rels.Bytes()
	}
}

// nextRelationshipID returns "rId" followed by one more than the highest
// numeric rId in use.
func nextRelationshipID(root *xml.Node) string {
	maxID := 0
	for _, c := range root.Children {
		if c.Kind != xml.ElementNode {
			continue
		}
		id, _ := c.Attr(xml.Name{Local: "Id"})
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && strings.HasPrefix(id, "rId") && n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("rId%d", maxID+1)
}

// relativeTarget expresses target relative to the directory of part.
func relativeTarget(part, target string) string {
	dir := part[:strings.LastIndex(part, "/")+1]
	if rest, ok := strings.CutPrefix(target, dir); ok {
		return rest
	}
	return "/" + target
}
