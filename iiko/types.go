package iiko

import (
	"encoding/xml"
	"strings"

	"github.com/google/uuid"
)

// IDName is the id/name pair the server uses for embedded references
type IDName struct {
	ID   uuid.UUID `xml:"id" json:"id" yaml:"id"`
	Name string    `xml:"name" json:"name" yaml:"name"`
}

// DepartmentType is the node kind in the corporation hierarchy
type DepartmentType string

const (
	DepartmentCorporation    DepartmentType = "CORPORATION"
	DepartmentJurPerson      DepartmentType = "JURPERSON"
	DepartmentOrgDevelopment DepartmentType = "ORGDEVELOPMENT"
	DepartmentDepartment     DepartmentType = "DEPARTMENT"
	DepartmentManufacture    DepartmentType = "MANUFACTURE"
	DepartmentCentralStore   DepartmentType = "CENTRALSTORE"
	DepartmentCentralOffice  DepartmentType = "CENTRALOFFICE"
	DepartmentSalePoint      DepartmentType = "SALEPOINT"
	DepartmentStore          DepartmentType = "STORE"
)

// CorporateItem is a department, store or legal entity of the corporation
type CorporateItem struct {
	ID               uuid.UUID            `xml:"id" json:"id" yaml:"id"`
	ParentID         *uuid.UUID           `xml:"parentId" json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Code             string               `xml:"code" json:"code,omitempty" yaml:"code,omitempty"`
	Name             string               `xml:"name" json:"name,omitempty" yaml:"name,omitempty"`
	Type             DepartmentType       `xml:"type" json:"type" yaml:"type"`
	TaxpayerIDNumber string               `xml:"taxpayerIdNumber" json:"taxpayerIdNumber,omitempty" yaml:"taxpayerIdNumber,omitempty"`
	JurPerson        *JurPersonProperties `xml:"jurPersonAdditionalPropertiesDto" json:"jurPerson,omitempty" yaml:"jurPerson,omitempty"`
}

// Fields returns the item as a flat map for filter expressions
func (i CorporateItem) Fields() map[string]any {
	return map[string]any{
		"ID":   i.ID.String(),
		"Code": i.Code,
		"Name": i.Name,
		"Type": string(i.Type),
		"INN":  i.TaxpayerIDNumber,
	}
}

// JurPersonProperties holds legal entity details
type JurPersonProperties struct {
	TaxpayerID           string `xml:"taxpayerId" json:"taxpayerId,omitempty" yaml:"taxpayerId,omitempty"`
	AccountingReasonCode string `xml:"accountingReasonCode" json:"accountingReasonCode,omitempty" yaml:"accountingReasonCode,omitempty"`
	RegistrationNumber   string `xml:"registrationNumber" json:"registrationNumber,omitempty" yaml:"registrationNumber,omitempty"`
	Address              string `xml:"address" json:"address,omitempty" yaml:"address,omitempty"`
	Phone                string `xml:"phone" json:"phone,omitempty" yaml:"phone,omitempty"`
	Bank                 string `xml:"bank" json:"bank,omitempty" yaml:"bank,omitempty"`
	BIK                  string `xml:"bik" json:"bik,omitempty" yaml:"bik,omitempty"`
	SettlementAccount    string `xml:"settlementAccount" json:"settlementAccount,omitempty" yaml:"settlementAccount,omitempty"`
}

type corporateItems struct {
	Items []CorporateItem `xml:"corporateItemDto"`
}

// PointOfSale is a cash register point within a group
type PointOfSale struct {
	ID           uuid.UUID `xml:"id" json:"id" yaml:"id"`
	Name         string    `xml:"name" json:"name" yaml:"name"`
	Main         bool      `xml:"main" json:"main" yaml:"main"`
	CashRegister *IDName   `xml:"cashRegisterInfo" json:"cashRegister,omitempty" yaml:"cashRegister,omitempty"`
}

// Group is a group of departments sharing a service mode
type Group struct {
	ID                 uuid.UUID     `xml:"id" json:"id" yaml:"id"`
	Name               string        `xml:"name" json:"name" yaml:"name"`
	DepartmentID       *uuid.UUID    `xml:"departmentId" json:"departmentId,omitempty" yaml:"departmentId,omitempty"`
	ServiceMode        string        `xml:"groupServiceMode" json:"serviceMode" yaml:"serviceMode"`
	PointsOfSale       []PointOfSale `xml:"pointOfSaleDtoes>pointOfSaleDto" json:"pointsOfSale,omitempty" yaml:"pointsOfSale,omitempty"`
	RestaurantSections []IDName      `xml:"restaurantSectionInfos>restaurantSectionInfo" json:"restaurantSections,omitempty" yaml:"restaurantSections,omitempty"`
}

// Fields returns the group as a flat map for filter expressions
func (g Group) Fields() map[string]any {
	return map[string]any{
		"ID":          g.ID.String(),
		"Name":        g.Name,
		"ServiceMode": g.ServiceMode,
	}
}

type groups struct {
	Items []Group `xml:"groupDto"`
}

// Terminal is a front-office terminal
type Terminal struct {
	ID                   uuid.UUID `xml:"id" json:"id" yaml:"id"`
	Name                 string    `xml:"name" json:"name" yaml:"name"`
	ComputerName         string    `xml:"computerName" json:"computerName,omitempty" yaml:"computerName,omitempty"`
	Anonymous            bool      `xml:"anonymous" json:"anonymous" yaml:"anonymous"`
	Group                *IDName   `xml:"groupInfo" json:"group,omitempty" yaml:"group,omitempty"`
	RestaurantSectionIDs []string  `xml:"restaurantSectionIds>i" json:"restaurantSectionIds,omitempty" yaml:"restaurantSectionIds,omitempty"`
}

// Fields returns the terminal as a flat map for filter expressions
func (t Terminal) Fields() map[string]any {
	return map[string]any{
		"ID":           t.ID.String(),
		"Name":         t.Name,
		"ComputerName": t.ComputerName,
		"Anonymous":    t.Anonymous,
	}
}

type terminals struct {
	Items []Terminal `xml:"terminalDto"`
}

// CorporationSettings is returned by the v2 settings endpoint
type CorporationSettings struct {
	VatAccounting string `json:"vatAccounting" yaml:"vatAccounting"`
}

// ServerType tells how the server participates in a chain
type ServerType string

const (
	ServerTypeChain         ServerType = "CHAIN"
	ServerTypeReplicatedRMS ServerType = "REPLICATED_RMS"
	ServerTypeStandaloneRMS ServerType = "STANDALONE_RMS"
)

// ReplicationStatus describes the last replication of one department
type ReplicationStatus struct {
	DepartmentID        *uuid.UUID `xml:"departmentId" json:"departmentId,omitempty" yaml:"departmentId,omitempty"`
	DepartmentName      string     `xml:"departmentName" json:"departmentName,omitempty" yaml:"departmentName,omitempty"`
	LastReplicationDate string     `xml:"lastReplicationDate" json:"lastReplicationDate,omitempty" yaml:"lastReplicationDate,omitempty"`
	Status              string     `xml:"status" json:"status,omitempty" yaml:"status,omitempty"`
	ErrorMessage        string     `xml:"errorMessage" json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

type replicationStatuses struct {
	Items []ReplicationStatus `xml:"replicationStatus"`
}

// Supplier is an employee record flagged as a supplier
type Supplier struct {
	ID               uuid.UUID `xml:"id" json:"id" yaml:"id"`
	Code             string    `xml:"code" json:"code" yaml:"code"`
	Name             string    `xml:"name" json:"name" yaml:"name"`
	Login            string    `xml:"login" json:"login,omitempty" yaml:"login,omitempty"`
	Phone            string    `xml:"phone" json:"phone,omitempty" yaml:"phone,omitempty"`
	CellPhone        string    `xml:"cellPhone" json:"cellPhone,omitempty" yaml:"cellPhone,omitempty"`
	FirstName        string    `xml:"firstName" json:"firstName,omitempty" yaml:"firstName,omitempty"`
	MiddleName       string    `xml:"middleName" json:"middleName,omitempty" yaml:"middleName,omitempty"`
	LastName         string    `xml:"lastName" json:"lastName,omitempty" yaml:"lastName,omitempty"`
	Email            string    `xml:"email" json:"email,omitempty" yaml:"email,omitempty"`
	Address          string    `xml:"address" json:"address,omitempty" yaml:"address,omitempty"`
	Note             string    `xml:"note" json:"note,omitempty" yaml:"note,omitempty"`
	CardNumber       string    `xml:"cardNumber" json:"cardNumber,omitempty" yaml:"cardNumber,omitempty"`
	TaxpayerIDNumber string    `xml:"taxpayerIdNumber" json:"taxpayerIdNumber,omitempty" yaml:"taxpayerIdNumber,omitempty"`
	GLN              string    `xml:"gln" json:"gln,omitempty" yaml:"gln,omitempty"`
	Deleted          bool      `xml:"deleted" json:"deleted" yaml:"deleted"`
	IsSupplier       bool      `xml:"supplier" json:"supplier" yaml:"supplier"`
	IsEmployee       bool      `xml:"employee" json:"employee" yaml:"employee"`
	IsClient         bool      `xml:"client" json:"client" yaml:"client"`
}

// Fields returns the supplier as a flat map for filter expressions
func (s Supplier) Fields() map[string]any {
	return map[string]any{
		"ID":      s.ID.String(),
		"Code":    s.Code,
		"Name":    s.Name,
		"Phone":   s.Phone,
		"Email":   s.Email,
		"INN":     s.TaxpayerIDNumber,
		"Deleted": s.Deleted,
	}
}

type suppliers struct {
	Items []Supplier `xml:"employee"`
}

// PriceListItem maps one of our products to the supplier's product
type PriceListItem struct {
	NativeProduct       *uuid.UUID `xml:"nativeProduct" json:"nativeProduct,omitempty" yaml:"nativeProduct,omitempty"`
	NativeProductCode   string     `xml:"nativeProductCode" json:"nativeProductCode,omitempty" yaml:"nativeProductCode,omitempty"`
	NativeProductNum    string     `xml:"nativeProductNum" json:"nativeProductNum,omitempty" yaml:"nativeProductNum,omitempty"`
	NativeProductName   string     `xml:"nativeProductName" json:"nativeProductName,omitempty" yaml:"nativeProductName,omitempty"`
	SupplierProduct     *uuid.UUID `xml:"supplierProduct" json:"supplierProduct,omitempty" yaml:"supplierProduct,omitempty"`
	SupplierProductCode string     `xml:"supplierProductCode" json:"supplierProductCode,omitempty" yaml:"supplierProductCode,omitempty"`
	SupplierProductNum  string     `xml:"supplierProductNum" json:"supplierProductNum,omitempty" yaml:"supplierProductNum,omitempty"`
	SupplierProductName string     `xml:"supplierProductName" json:"supplierProductName,omitempty" yaml:"supplierProductName,omitempty"`
	CostPrice           float64    `xml:"costPrice" json:"costPrice" yaml:"costPrice"`
}

type priceList struct {
	XMLName xml.Name
	Items   []PriceListItem `xml:"supplierPriceListItemDto"`
}

// Event is a single entry of the server's event journal
type Event struct {
	ID           *uuid.UUID       `xml:"id,omitempty" json:"id,omitempty" yaml:"id,omitempty"`
	Date         string           `xml:"date,omitempty" json:"date,omitempty" yaml:"date,omitempty"`
	Type         string           `xml:"type,omitempty" json:"type,omitempty" yaml:"type,omitempty"`
	DepartmentID *uuid.UUID       `xml:"departmentId,omitempty" json:"departmentId,omitempty" yaml:"departmentId,omitempty"`
	Attributes   []EventAttribute `xml:"attribute" json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Attribute returns the value of the named attribute
func (e Event) Attribute(name string) (string, bool) {
	for _, a := range e.Attributes {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// EventAttribute is a typed name/value pair attached to an event
type EventAttribute struct {
	Name  string `xml:"name" json:"name" yaml:"name"`
	Value string `xml:"value" json:"value" yaml:"value"`
	Type  string `xml:"type,omitempty" json:"type,omitempty" yaml:"type,omitempty"`
}

// EventsList is a page of events plus the revision to continue from
type EventsList struct {
	XMLName  xml.Name `xml:"eventsList" json:"-" yaml:"-"`
	Events   []Event  `xml:"event" json:"events" yaml:"events"`
	Revision *int64   `xml:"revision,omitempty" json:"revision,omitempty" yaml:"revision,omitempty"`
}

// EventGroup is a node of the event type tree
type EventGroup struct {
	ID    *uuid.UUID  `xml:"id" json:"id,omitempty" yaml:"id,omitempty"`
	Name  string      `xml:"name" json:"name" yaml:"name"`
	Types []EventType `xml:"type" json:"types,omitempty" yaml:"types,omitempty"`
}

// EventType describes one kind of event and its attributes
type EventType struct {
	ID         *uuid.UUID `xml:"id" json:"id,omitempty" yaml:"id,omitempty"`
	Name       string     `xml:"name" json:"name" yaml:"name"`
	Severity   string     `xml:"severity" json:"severity,omitempty" yaml:"severity,omitempty"`
	Attributes []IDName   `xml:"attribute" json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type eventGroups struct {
	Groups []EventGroup `xml:"group"`
}

type eventsRequest struct {
	XMLName   xml.Name         `xml:"eventsRequestData"`
	Events    []string         `xml:"events>event"`
	OrderNums *orderNumsFilter `xml:"orderNums,omitempty"`
}

// orderNumsFilter is nil when no order numbers are given, which omits <orderNums>
type orderNumsFilter struct {
	Items []string `xml:"orderNum"`
}

// CashSession is a cash register shift
type CashSession struct {
	ID                 *uuid.UUID `xml:"id" json:"id,omitempty" yaml:"id,omitempty"`
	OpenTime           string     `xml:"openTime" json:"openTime,omitempty" yaml:"openTime,omitempty"`
	CloseTime          string     `xml:"closeTime" json:"closeTime,omitempty" yaml:"closeTime,omitempty"`
	Manager            string     `xml:"manager" json:"manager,omitempty" yaml:"manager,omitempty"`
	SessionNumber      string     `xml:"sessionNumber" json:"sessionNumber,omitempty" yaml:"sessionNumber,omitempty"`
	CashRegisterNumber string     `xml:"cashRegisterNumber" json:"cashRegisterNumber,omitempty" yaml:"cashRegisterNumber,omitempty"`
	OperDay            string     `xml:"operDay" json:"operDay,omitempty" yaml:"operDay,omitempty"`
}

type cashSessions struct {
	Sessions []CashSession `xml:"session"`
}

// ProductType is the nomenclature kind of a product
type ProductType string

const (
	ProductGoods    ProductType = "GOODS"
	ProductDish     ProductType = "DISH"
	ProductPrepared ProductType = "PREPARED"
	ProductService  ProductType = "SERVICE"
	ProductModifier ProductType = "MODIFIER"
	ProductOuter    ProductType = "OUTER"
	ProductRate     ProductType = "RATE"
)

// Product is a nomenclature item of the v2 entities API
type Product struct {
	ID                     *uuid.UUID  `json:"id,omitempty" yaml:"id,omitempty"`
	Deleted                bool        `json:"deleted" yaml:"deleted"`
	Name                   string      `json:"name,omitempty" yaml:"name,omitempty"`
	Description            string      `json:"description,omitempty" yaml:"description,omitempty"`
	Num                    string      `json:"num,omitempty" yaml:"num,omitempty"`
	Code                   string      `json:"code,omitempty" yaml:"code,omitempty"`
	Parent                 *uuid.UUID  `json:"parent,omitempty" yaml:"parent,omitempty"`
	Category               *uuid.UUID  `json:"category,omitempty" yaml:"category,omitempty"`
	AccountingCategory     *uuid.UUID  `json:"accountingCategory,omitempty" yaml:"accountingCategory,omitempty"`
	MainUnit               *uuid.UUID  `json:"mainUnit,omitempty" yaml:"mainUnit,omitempty"`
	Type                   ProductType `json:"type,omitempty" yaml:"type,omitempty"`
	DefaultSalePrice       *float64    `json:"defaultSalePrice,omitempty" yaml:"defaultSalePrice,omitempty"`
	UnitWeight             *float64    `json:"unitWeight,omitempty" yaml:"unitWeight,omitempty"`
	UnitCapacity           *float64    `json:"unitCapacity,omitempty" yaml:"unitCapacity,omitempty"`
	DefaultIncludedInMenu  *bool       `json:"defaultIncludedInMenu,omitempty" yaml:"defaultIncludedInMenu,omitempty"`
	NotInStoreMovement     *bool       `json:"notInStoreMovement,omitempty" yaml:"notInStoreMovement,omitempty"`
	EstimatedPurchasePrice *float64    `json:"estimatedPurchasePrice,omitempty" yaml:"estimatedPurchasePrice,omitempty"`
	Barcodes               []Barcode   `json:"barcodes,omitempty" yaml:"barcodes,omitempty"`
}

// Fields returns the product as a flat map for filter expressions
func (p Product) Fields() map[string]any {
	price := 0.0
	if p.DefaultSalePrice != nil {
		price = *p.DefaultSalePrice
	}
	return map[string]any{
		"Name":    p.Name,
		"Num":     p.Num,
		"Code":    p.Code,
		"Type":    string(p.Type),
		"Price":   price,
		"Deleted": p.Deleted,
	}
}

// Barcode binds a barcode to a product or one of its containers
type Barcode struct {
	Barcode     string     `json:"barcode" yaml:"barcode"`
	ContainerID *uuid.UUID `json:"containerId,omitempty" yaml:"containerId,omitempty"`
}

// OperationError is a validation error reported by a v2 write endpoint
type OperationError struct {
	Code  string `json:"code,omitempty" yaml:"code,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// ProductResult is the response of product save and update
type ProductResult struct {
	Result   string           `json:"result" yaml:"result"`
	Errors   []OperationError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Response Product          `json:"response" yaml:"response"`
}

// ProductsResult is the response of product delete and restore
type ProductsResult struct {
	Result   string           `json:"result" yaml:"result"`
	Errors   []OperationError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Response []Product        `json:"response,omitempty" yaml:"response,omitempty"`
}

type idItem struct {
	ID uuid.UUID `json:"id"`
}

type itemsRequest struct {
	Items []idItem `json:"items"`
}
