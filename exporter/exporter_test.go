package exporter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/flightscrape/config"
	"github.com/gewnthar/flightscrape/models"
	"github.com/gewnthar/flightscrape/normalizer"
)

const samplePayload = `{"results": [
  {
    "cabin": "economy",
    "displayAirline": {"code": "GA"},
    "legs": [
      {"legDurationDisplay": "8h 10m", "segments": [
        {"airline": "Garuda Indonesia", "duration": "1h 50m"},
        {"carrier": {"code": "QF", "name": "Qantas"}, "duration": "6h 20m"}
      ]},
      {"legDurationDisplay": "7h 55m", "segments": [{"airline": "Qantas", "duration": 475}]}
    ],
    "optionsByFare": [{"displayPrice": "$1,236.50", "provider": "Trip.com"}],
    "providerInfo": {"currency": "USD"},
    "operationalDisclosures": ["Café <Kopi> & snacks"]
  },
  {"cabinCode": "F", "origin": "DPS"}
]}`

func sampleRecords(t *testing.T) []models.NormalizedItinerary {
	t.Helper()
	records, err := normalizer.NormalizeJSON([]byte(samplePayload), normalizer.Defaults{Origin: "CGK", Destination: "SYD"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	return records
}

func TestFlatten(t *testing.T) {
	records := sampleRecords(t)

	row := Flatten(records[0])
	assert.Equal(t, "CGK", row.Origin)
	assert.Equal(t, "SYD", row.Destination)
	assert.Equal(t, "e", row.CabinCode)
	assert.Equal(t, "GA", row.DisplayAirlineCode)
	assert.Equal(t, "Garuda Indonesia", row.DisplayAirlineName)
	require.NotNil(t, row.MinDisplayPrice)
	assert.Equal(t, 1236.5, *row.MinDisplayPrice)
	assert.Equal(t, "Trip.com", row.ProviderName)
	assert.Equal(t, "USD", row.ProviderCurrency)
	assert.Equal(t, 2, row.Legs)
	assert.Equal(t, 3, row.Segments)
	assert.Equal(t, "8h 10m", row.FirstLegDuration)
	require.NotNil(t, row.CO2EstimatedKg)

	empty := Flatten(records[1])
	assert.Equal(t, "DPS", empty.Origin)
	assert.Equal(t, "MULT", empty.DisplayAirlineCode)
	assert.Nil(t, empty.MinDisplayPrice)
	assert.Nil(t, empty.CO2EstimatedKg)
	assert.Zero(t, empty.Legs)
	assert.Empty(t, empty.FirstLegDuration)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	records := sampleRecords(t)
	path := filepath.Join(t.TempDir(), "nested", "out", "itineraries.json")

	require.NoError(t, WriteJSON(records, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "[\n  {\n    \"cabinCode\""))
	assert.Contains(t, string(raw), "Café <Kopi> & snacks")

	back, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, records, back)
}

func TestWriteJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, WriteJSON(nil, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestWriteCSVHeaderOnlyWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csv", "empty.csv")
	require.NoError(t, WriteCSV(nil, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Columns, ",")+"\n", string(raw))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := ReadCSV(f)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	records := sampleRecords(t)
	path := filepath.Join(t.TempDir(), "itineraries.csv")
	require.NoError(t, WriteCSV(records, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Columns, ","), lines[0])

	rows, err := ReadCSV(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, FlattenAll(records), rows)
}

func TestReadCSVEmptyInput(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteXLSX(t *testing.T) {
	records := sampleRecords(t)
	path := filepath.Join(t.TempDir(), "xlsx", "itineraries.xlsx")
	require.NoError(t, WriteXLSX(records, path))

	rows, err := ReadXLSX(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "CGK", rows[1][0])
	assert.Equal(t, "Garuda Indonesia", rows[1][4])
	assert.Equal(t, "2", rows[1][8])
	assert.Equal(t, "DPS", rows[2][0])
}

func TestWriteXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(nil, path))

	rows, err := ReadXLSX(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Columns, rows[0])
}

func TestValidateRecords(t *testing.T) {
	records := sampleRecords(t)
	require.NoError(t, ValidateRecords(records))
	require.NoError(t, ValidateRecords(nil))

	broken := records[0]
	broken.CabinCode = ""
	err := ValidateRecords([]models.NormalizedItinerary{broken})
	require.Error(t, err)
	var ve *jsonschema.ValidationError
	assert.True(t, errors.As(err, &ve))

	negative := -5.0
	broken = records[1]
	broken.MinDisplayPrice = &negative
	require.Error(t, ValidateRecords([]models.NormalizedItinerary{broken}))
}

func TestValidateRecordsAcceptsSourceCO2Info(t *testing.T) {
	records := sampleRecords(t)
	records[0].CO2Info = models.CO2EstimateFromSource("120 kg")
	records[1].CO2Info = models.CO2EstimateFromSource(map[string]any{"value": 120.0, "unit": "kg"})
	require.NoError(t, ValidateRecords(records))

	negative := -1.0
	records[0].CO2Info = models.CO2Estimate{EstimatedKgCO2: &negative, Method: models.CO2MethodSource}
	require.Error(t, ValidateRecords(records[:1]))
}

func TestValidateJSONRequiresFields(t *testing.T) {
	require.Error(t, ValidateJSON([]byte(`[{"cabinCode": "e"}]`)))
	require.Error(t, ValidateJSON([]byte(`{"cabinCode": "e"}`)))
	require.Error(t, ValidateJSON([]byte(`[`)))
}

func TestObjectKeyAndContentType(t *testing.T) {
	assert.Equal(t, "exports/run.csv", ObjectKey("/exports/", filepath.Join("out", "run.csv")))
	assert.Equal(t, "run.json", ObjectKey("", "run.json"))
	assert.Equal(t, "text/csv", ContentType("a.CSV"))
	assert.Equal(t, "application/json", ContentType("a.json"))
	assert.Contains(t, ContentType("a.xlsx"), "spreadsheetml")
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}

func TestNewS3UploaderRequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(configWithoutBucket())
	require.Error(t, err)
}

func configWithoutBucket() config.ObjectStoreConfig {
	return config.ObjectStoreConfig{Endpoint: "localhost:9000"}
}
