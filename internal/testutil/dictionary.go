package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// DictionaryRows returns a small dictionary covering both lineages: tables
// addresses (current only), sites and samples, a categorical collection
// attribute, an integer quantity with bounds, and one legacy-era attribute
// with no legacy mapping (oldField).
func DictionaryRows() (parts, sets []dictionary.RawRow) {
	parts = []dictionary.RawRow{
		{"partID": "addresses", "partType": "tables", "status": "active", "firstReleased": "2.0.0", "lastUpdated": "2.0.0"},
		{"partID": "sites", "partType": "tables", "status": "active", "firstReleased": "1.0.0", "lastUpdated": "2.0.0",
			"version1Location": "tables", "version1Table": "Site"},
		{"partID": "samples", "partType": "tables", "status": "active", "firstReleased": "1.0.0", "lastUpdated": "2.0.0",
			"version1Location": "tables", "version1Table": "Sample"},

		{"partID": "addID", "partType": "attributes", "status": "active", "firstReleased": "2.0.0", "dataType": "varchar",
			"addresses": "header", "addressesRequired": "mandatory"},
		{"partID": "siteID", "partType": "attributes", "status": "active", "firstReleased": "1.0.0", "dataType": "varchar",
			"sites": "header", "sitesRequired": "mandatory", "samples": "input", "samplesRequired": "optional",
			"version1Location": "variables", "version1Table": "Site;Sample", "version1Variable": "siteID"},
		{"partID": "quantity", "partType": "attributes", "status": "active", "firstReleased": "1.0.0", "dataType": "integer",
			"minValue": "0", "maxValue": "1000", "samples": "input", "samplesRequired": "optional",
			"version1Location": "variables", "version1Table": "Sample", "version1Variable": "Quantity"},
		{"partID": "collection", "partType": "attributes", "status": "active", "firstReleased": "1.0.0", "dataType": "categorical",
			"catSetID": "collectCat", "samples": "input", "samplesRequired": "mandatory",
			"version1Location": "variables", "version1Table": "Sample", "version1Variable": "Collection"},
		{"partID": "isPooled", "partType": "attributes", "status": "active", "firstReleased": "1.0.0", "dataType": "boolean",
			"samples": "input", "samplesRequired": "NA",
			"version1Location": "variables", "version1Table": "Sample", "version1Variable": "Pooled"},
		{"partID": "collDT", "partType": "attributes", "status": "active", "firstReleased": "1.0.0", "dataType": "datetime",
			"samples": "input", "version1Location": "variables", "version1Table": "Sample", "version1Variable": "DateTime"},
		{"partID": "notes", "partType": "attributes", "status": "active", "firstReleased": "2.1.0", "dataType": "varchar",
			"minLength": "2", "maxLength": "20", "samples": "input", "version1Location": "NA"},
		{"partID": "oldField", "partType": "attributes", "status": "active", "firstReleased": "1.0.0", "dataType": "varchar",
			"samples": "input"},

		{"partID": "comp3h", "partType": "categories", "status": "active", "firstReleased": "1.0.0",
			"version1Location": "variableCategories", "version1Table": "Sample", "version1Variable": "Collection", "version1Category": "Comp3h"},
		{"partID": "comp8h", "partType": "categories", "status": "active", "firstReleased": "1.0.0",
			"version1Location": "variableCategories", "version1Table": "Sample", "version1Variable": "Collection", "version1Category": "Comp8h"},
		{"partID": "flowPr", "partType": "categories", "status": "active", "firstReleased": "1.0.0",
			"version1Location": "variableCategories", "version1Table": "Sample", "version1Variable": "Collection", "version1Category": "FlowPr"},
		{"partID": "grab", "partType": "categories", "status": "depreciated", "firstReleased": "1.0.0", "lastUpdated": "2.0.0",
			"version1Location": "variableCategories", "version1Table": "Sample", "version1Variable": "Collection", "version1Category": "Grb"},
		{"partID": "TRUE", "partType": "categories", "status": "active", "firstReleased": "1.0.0", "version1Category": "true"},
		{"partID": "FALSE", "partType": "categories", "status": "active", "firstReleased": "1.0.0", "version1Category": "false"},

		{"partID": "missing", "partType": "missingness", "status": "active", "firstReleased": "1.0.0"},
		{"partID": "notCollected", "partType": "missingness", "status": "active", "firstReleased": "1.0.0"},
	}
	sets = []dictionary.RawRow{
		{"setID": "collectCat", "partID": "comp3h", "status": "active", "firstReleased": "2.0.0"},
		{"setID": "collectCat", "partID": "comp8h", "status": "active", "firstReleased": "2.0.0"},
		{"setID": "collectCat", "partID": "flowPr", "status": "active", "firstReleased": "2.0.0"},
		{"setID": "collectCat", "partID": "grab", "status": "depreciated", "firstReleased": "2.0.0", "lastUpdated": "2.0.0"},
		{"setID": "booleanSet", "partID": "TRUE", "status": "active", "firstReleased": "1.0.0"},
		{"setID": "booleanSet", "partID": "FALSE", "status": "active", "firstReleased": "1.0.0"},
	}
	return parts, sets
}

// Model builds the DictionaryRows fixture for the given version.
func Model(t testing.TB, v string) *dictionary.Model {
	t.Helper()
	parts, sets := DictionaryRows()
	m, err := dictionary.Build(parts, sets, version.MustParse(v), dictionary.WithLogger(NewTestLogger(t)))
	require.NoError(t, err)
	return m
}

// WriteDictionary writes the DictionaryRows fixture as parts.csv and
// sets.csv under dir and returns their paths.
func WriteDictionary(t testing.TB, dir string) (partsPath, setsPath string) {
	t.Helper()
	parts, sets := DictionaryRows()
	partsPath = filepath.Join(dir, "parts.csv")
	setsPath = filepath.Join(dir, "sets.csv")
	writeRowsCSV(t, partsPath, parts)
	writeRowsCSV(t, setsPath, sets)
	return partsPath, setsPath
}

func writeRowsCSV(t testing.TB, path string, rows []dictionary.RawRow) {
	t.Helper()
	seen := make(map[string]bool)
	var header []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}
	sort.Strings(header)

	f, err := os.Create(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	for _, r := range rows {
		rec := make([]string, len(header))
		for i, h := range header {
			rec[i] = r[h]
		}
		require.NoError(t, w.Write(rec))
	}
	w.Flush()
	require.NoError(t, w.Error())
}
