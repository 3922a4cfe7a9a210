package descriptions

import "sort"

// Tool names
const (
	ToolCompareDocuments = "compare_documents"
	ToolExtractDocument  = "extract_document"
	ToolReadSpreadsheet  = "read_spreadsheet"
	ToolServerInfo       = "server_info"
)

const (
	CompareDocumentsDescription = `Compare a PDF document against a spreadsheet and report every discrepancy.

**When to use:** You need to check whether a spreadsheet faithfully reflects a PDF (invoices, price lists, statements, exported reports).

**What it reports:**
• Text diff: the PDF's text against the spreadsheet's cells (one cell per line, row by row), grouped into hunks with surrounding context
• Data diff: every cell that differs between the PDF's tables and the spreadsheet, for the columns both share

**Examples:**
• "Compare invoice-2024-001.pdf with invoice-2024-001.xlsx"
• "Check that prices.csv matches the table in price-list.pdf, as markdown"

**Notes:** Rows are paired by position unless the server is configured for key alignment. Values are compared as strings; numeric or case-insensitive comparison is configured per column.`

	ExtractDocumentDescription = `Extract the text and detected tables of each page of a PDF.

**When to use:** Before comparing, to see what the comparison will read from the document, or to debug why a table was not matched.

**Examples:**
• "Show the tables found in statement.pdf"
• "What text does report.pdf contain on page 3?"

**Notes:** Tables are detected from the position of text on the page; the first row of a detected grid is its header. Pages that cannot be read are listed as warnings.`

	ReadSpreadsheetDescription = `Read one sheet of an XLSX or CSV file as a header plus rows.

**When to use:** To inspect the spreadsheet side of a comparison, or to pick the right sheet name.

**Examples:**
• "Show the first rows of orders.xlsx"
• "Read the 'Totals' sheet of budget.xlsx"

**Notes:** The first sheet is read unless a sheet name is given. The first row is the header.`

	ServerInfoDescription = `Get server information: version, base directory, limits, comparison settings and available tools.

**When to use:** At the start of a session, to learn which files can be read and how values will be compared.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ToolCompareDocuments: CompareDocumentsDescription,
	ToolExtractDocument:  ExtractDocumentDescription,
	ToolReadSpreadsheet:  ReadSpreadsheetDescription,
	ToolServerInfo:       ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns every tool name in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
