package schema

// Default sheet names of the destination workbook.
const (
	HeaderTable = "SalesOrderHeader"
	DetailTable = "SalesOrderDetail"
)

// Identifier columns. The allocator refuses to write when either is
// missing from its table.
const (
	HeaderIDColumn = "SalesOrderID"
	DetailIDColumn = "SalesOrderDetailID"
)

// HeaderFieldSpecs defines the recognized columns of SalesOrderHeader.
var HeaderFieldSpecs = []FieldSpec{
	{Name: "SalesOrderID", Type: FieldInt},
	{Name: "RevisionNumber", Type: FieldInt, Fixed: true},
	{Name: "OrderDate", Type: FieldDate},
	{Name: "DueDate", Type: FieldDate},
	{Name: "ShipDate", Type: FieldDate},
	{Name: "Status", Type: FieldInt, Fixed: true},
	{Name: "OnlineOrderFlag", Type: FieldBool, Fixed: true},
	{Name: "SalesOrderNumber", Type: FieldText},
	{Name: "PurchaseOrderNumber", Type: FieldText},
	{Name: "AccountNumber", Type: FieldText},
	{Name: "CustomerID", Type: FieldInt},
	{Name: "SubTotal", Type: FieldNumeric},
	{Name: "TaxAmt", Type: FieldNumeric},
	{Name: "Freight", Type: FieldNumeric},
	{Name: "TotalDue", Type: FieldNumeric},
	{Name: "Comment", Type: FieldText},
}

// DetailFieldSpecs defines the recognized columns of SalesOrderDetail.
// CarrierTrackingNumber and SpecialOfferID are declared but always
// written null by the ingestion path.
var DetailFieldSpecs = []FieldSpec{
	{Name: "SalesOrderID", Type: FieldInt},
	{Name: "SalesOrderDetailID", Type: FieldInt},
	{Name: "OrderQty", Type: FieldNumeric},
	{Name: "UnitPrice", Type: FieldNumeric},
	{Name: "UnitPriceDiscount", Type: FieldNumeric},
	{Name: "LineTotal", Type: FieldNumeric},
	{Name: "ProductID", Type: FieldText},
	{Name: "CarrierTrackingNumber", Type: FieldText},
	{Name: "SpecialOfferID", Type: FieldInt},
}
