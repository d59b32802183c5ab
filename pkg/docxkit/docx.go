package docxkit

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"sort"
)

const (
	documentPart     = "word/document.xml"
	contentTypesPart = "[Content_Types].xml"
)

// templatePartPattern matches the parts that may hold placeholders.
var templatePartPattern = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes|comments)\.xml$`)

// Package is an opened DOCX archive.
type Package struct {
	reader *zip.Reader
	files  []*zip.File
	Parts  map[string]*zip.File
}

// OpenPackage reads a DOCX archive.
func OpenPackage(r io.ReaderAt, size int64) (*Package, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	p := &Package{
		reader: zipReader,
		files:  zipReader.File,
		Parts:  make(map[string]*zip.File, len(zipReader.File)),
	}
	for _, file := range zipReader.File {
		p.Parts[file.Name] = file
	}
	if _, ok := p.Parts[documentPart]; !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", documentPart)
	}
	return p, nil
}

// OpenPackageFile reads a DOCX archive from disk.
func OpenPackageFile(filename string) (*Package, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return OpenPackage(bytes.NewReader(content), int64(len(content)))
}

// Has reports whether the archive holds name.
func (p *Package) Has(name string) bool {
	_, ok := p.Parts[name]
	return ok
}

// ReadPart returns the content of a part.
func (p *Package) ReadPart(name string) ([]byte, error) {
	file, ok := p.Parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", name, err)
	}
	return content, nil
}

// TemplateParts lists the parts that may hold placeholders, in archive order.
func (p *Package) TemplateParts() []string {
	var names []string
	for _, f := range p.files {
		if templatePartPattern.MatchString(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names
}

// relationshipsPart returns the relationships part of a part,
// e.g. "word/document.xml" -> "word/_rels/document.xml.rels".
func relationshipsPart(partName string) string {
	dir, base := path.Split(partName)
	return dir + "_rels/" + base + ".rels"
}

// Write writes the archive to w. Entries named in replaced get the new
// content; entries in replaced that are not in the archive are appended in
// name order. Every other entry is copied without recompression.
func (p *Package) Write(w io.Writer, replaced map[string][]byte) error {
	zw := zip.NewWriter(w)
	written := make(map[string]bool, len(replaced))

	for _, file := range p.files {
		content, ok := replaced[file.Name]
		if !ok {
			if err := zw.Copy(file); err != nil {
				return fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
			continue
		}
		header := file.FileHeader
		header.CompressedSize64 = 0
		header.UncompressedSize64 = 0
		header.CRC32 = 0
		fw, err := zw.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", file.Name, err)
		}
		if _, err := fw.Write(content); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
		written[file.Name] = true
	}

	var added []string
	for name := range replaced {
		if !written[name] {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		if _, err := fw.Write(replaced[name]); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}
	return nil
}
