package iiko

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "session-token"

var (
	departmentID = uuid.MustParse("7f4a2c3e-1111-4a5b-9c2d-000000000001")
	storeID      = uuid.MustParse("7f4a2c3e-1111-4a5b-9c2d-000000000002")
	groupID      = uuid.MustParse("7f4a2c3e-1111-4a5b-9c2d-000000000003")
	terminalID   = uuid.MustParse("7f4a2c3e-1111-4a5b-9c2d-000000000004")
	supplierID   = uuid.MustParse("7f4a2c3e-1111-4a5b-9c2d-000000000005")
	productID    = uuid.MustParse("7f4a2c3e-1111-4a5b-9c2d-000000000006")
)

// newTestServer serves /auth with testToken and routes everything else
// through mux after checking the session key.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/resto/api/auth", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = io.WriteString(w, testToken)
	})
	for path, handler := range routes {
		mux.HandleFunc("/resto/api/"+path, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, testToken, r.URL.Query().Get("key"))
			handler(w, r)
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:  server.URL + "/resto/api",
		Login:    "admin",
		Password: HashPassword("secret"),
	}, zerolog.Nop())
	require.NoError(t, err)

	return client, server
}

func writeXML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/xml")
	_, _ = io.WriteString(w, body)
}

func TestGetDepartments(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"corporation/departments/": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "-1", r.URL.Query().Get("revisionFrom"))
			writeXML(w, `<corporateItemDtoes>
				<corporateItemDto>
					<id>`+departmentID.String()+`</id>
					<code>001</code>
					<name>Main Street</name>
					<type>DEPARTMENT</type>
					<taxpayerIdNumber>7701234567</taxpayerIdNumber>
				</corporateItemDto>
				<corporateItemDto>
					<id>`+storeID.String()+`</id>
					<parentId>`+departmentID.String()+`</parentId>
					<name>Kitchen store</name>
					<type>STORE</type>
				</corporateItemDto>
			</corporateItemDtoes>`)
		},
	})

	items, err := client.GetDepartments(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, departmentID, items[0].ID)
	assert.Nil(t, items[0].ParentID)
	assert.Equal(t, "Main Street", items[0].Name)
	assert.Equal(t, DepartmentDepartment, items[0].Type)
	assert.Equal(t, "7701234567", items[0].Fields()["INN"])

	require.NotNil(t, items[1].ParentID)
	assert.Equal(t, departmentID, *items[1].ParentID)
	assert.Equal(t, DepartmentStore, items[1].Type)
}

func TestGetStoresWithRevision(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"corporation/stores/": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "42", r.URL.Query().Get("revisionFrom"))
			writeXML(w, `<corporateItemDtoes/>`)
		},
	})

	items, err := client.GetStores(context.Background(), Int(42))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchDepartment(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"corporation/departments/search": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("code") == "001" {
				writeXML(w, `<corporateItemDtoes><corporateItemDto><id>`+departmentID.String()+`</id><code>001</code><type>DEPARTMENT</type></corporateItemDto></corporateItemDtoes>`)
				return
			}
			writeXML(w, `<corporateItemDtoes/>`)
		},
	})

	found, err := client.SearchDepartment(context.Background(), "001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, departmentID, found.ID)

	missing, err := client.SearchDepartment(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetGroupsAndTerminals(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"corporation/groups/search": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Hall", r.URL.Query().Get("name"))
			assert.False(t, r.URL.Query().Has("departmentId"))
			writeXML(w, `<groupDtoes>
				<groupDto>
					<id>`+groupID.String()+`</id>
					<name>Hall</name>
					<departmentId>`+departmentID.String()+`</departmentId>
					<groupServiceMode>TABLE_SERVICE</groupServiceMode>
					<pointOfSaleDtoes>
						<pointOfSaleDto><id>`+terminalID.String()+`</id><name>POS 1</name><main>true</main></pointOfSaleDto>
					</pointOfSaleDtoes>
					<restaurantSectionInfos>
						<restaurantSectionInfo><id>`+storeID.String()+`</id><name>Terrace</name></restaurantSectionInfo>
					</restaurantSectionInfos>
				</groupDto>
			</groupDtoes>`)
		},
		"corporation/terminals/search": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "false", r.URL.Query().Get("anonymous"))
			writeXML(w, `<terminalDtoes>
				<terminalDto>
					<id>`+terminalID.String()+`</id>
					<name>Bar</name>
					<computerName>BAR-PC</computerName>
					<anonymous>false</anonymous>
					<groupInfo><id>`+groupID.String()+`</id><name>Hall</name></groupInfo>
					<restaurantSectionIds><i>a</i><i>b</i></restaurantSectionIds>
				</terminalDto>
			</terminalDtoes>`)
		},
	})

	groups, err := client.SearchGroups(context.Background(), GroupSearch{Name: "Hall"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "TABLE_SERVICE", groups[0].ServiceMode)
	require.Len(t, groups[0].PointsOfSale, 1)
	assert.True(t, groups[0].PointsOfSale[0].Main)
	require.Len(t, groups[0].RestaurantSections, 1)
	assert.Equal(t, "Terrace", groups[0].RestaurantSections[0].Name)

	terminals, err := client.SearchTerminals(context.Background(), TerminalSearch{Anonymous: Bool(false)})
	require.NoError(t, err)
	require.Len(t, terminals, 1)
	assert.Equal(t, "BAR-PC", terminals[0].ComputerName)
	require.NotNil(t, terminals[0].Group)
	assert.Equal(t, groupID, terminals[0].Group.ID)
	assert.Equal(t, []string{"a", "b"}, terminals[0].RestaurantSectionIDs)
}

func TestGetCorporationSettings(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"v2/corporation/settings": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"vatAccounting": "VAT_INCLUDED"})
		},
	})

	settings, err := client.GetCorporationSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "VAT_INCLUDED", settings.VatAccounting)
}

func TestFetchCorporation(t *testing.T) {
	var inFlight, overlaps atomic.Int32
	guard := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if inFlight.Add(1) > 1 {
				overlaps.Add(1)
			}
			defer inFlight.Add(-1)
			time.Sleep(5 * time.Millisecond)
			writeXML(w, body)
		}
	}

	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"corporation/departments/": guard(`<corporateItemDtoes><corporateItemDto><id>` + departmentID.String() + `</id><type>DEPARTMENT</type></corporateItemDto></corporateItemDtoes>`),
		"corporation/stores/":      guard(`<corporateItemDtoes><corporateItemDto><id>` + storeID.String() + `</id><type>STORE</type></corporateItemDto></corporateItemDtoes>`),
		"corporation/groups/":      guard(`<groupDtoes><groupDto><id>` + groupID.String() + `</id><name>Hall</name></groupDto></groupDtoes>`),
		"corporation/terminals/":   guard(`<terminalDtoes/>`),
	})

	snapshot, err := client.FetchCorporation(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Departments, 1)
	assert.Len(t, snapshot.Stores, 1)
	assert.Len(t, snapshot.Groups, 1)
	assert.Empty(t, snapshot.Terminals)
	assert.Zero(t, overlaps.Load())
}

func TestFetchCorporationFailure(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"corporation/departments/": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no access to departments", http.StatusForbidden)
		},
		"corporation/stores/":    func(w http.ResponseWriter, r *http.Request) { writeXML(w, `<corporateItemDtoes/>`) },
		"corporation/groups/":    func(w http.ResponseWriter, r *http.Request) { writeXML(w, `<groupDtoes/>`) },
		"corporation/terminals/": func(w http.ResponseWriter, r *http.Request) { writeXML(w, `<terminalDtoes/>`) },
	})

	_, err := client.FetchCorporation(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "failed to get departments")
}

func TestReplication(t *testing.T) {
	serverType := "CHAIN"
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"replication/statuses": func(w http.ResponseWriter, r *http.Request) {
			writeXML(w, `<replicationStatuses>
				<replicationStatus>
					<departmentId>`+departmentID.String()+`</departmentId>
					<departmentName>Main Street</departmentName>
					<status>OK</status>
				</replicationStatus>
			</replicationStatuses>`)
		},
		"replication/byDepartmentId/" + departmentID.String() + "/status": func(w http.ResponseWriter, r *http.Request) {
			writeXML(w, `<replicationStatus><departmentName>Main Street</departmentName><status>ERROR</status><errorMessage>timeout</errorMessage></replicationStatus>`)
		},
		"replication/serverType": func(w http.ResponseWriter, r *http.Request) {
			writeXML(w, `<serverType>`+serverType+`</serverType>`)
		},
	})
	ctx := context.Background()

	statuses, err := client.GetReplicationStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "OK", statuses[0].Status)
	require.NotNil(t, statuses[0].DepartmentID)
	assert.Equal(t, departmentID, *statuses[0].DepartmentID)

	status, err := client.GetReplicationStatus(ctx, departmentID)
	require.NoError(t, err)
	assert.Equal(t, "timeout", status.ErrorMessage)

	st, err := client.GetServerType(ctx)
	require.NoError(t, err)
	assert.Equal(t, ServerTypeChain, st)

	serverType = "MAINFRAME"
	_, err = client.GetServerType(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)
}

func TestSuppliers(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"suppliers": func(w http.ResponseWriter, r *http.Request) {
			assert.False(t, r.URL.Query().Has("revisionFrom"))
			writeXML(w, `<employees>
				<employee>
					<id>`+supplierID.String()+`</id>
					<code>S-01</code>
					<name>Fresh Farm</name>
					<taxpayerIdNumber>5001112223</taxpayerIdNumber>
					<supplier>true</supplier>
					<employee>false</employee>
					<client>false</client>
				</employee>
			</employees>`)
		},
		"suppliers/search": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "key="+testToken+"&name=Fresh&email=a%40b.c", r.URL.RawQuery)
			writeXML(w, `<employees/>`)
		},
	})
	ctx := context.Background()

	list, err := client.ListSuppliers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, supplierID, list[0].ID)
	assert.Equal(t, "Fresh Farm", list[0].Name)
	assert.True(t, list[0].IsSupplier)
	assert.False(t, list[0].IsEmployee)
	assert.Equal(t, "5001112223", list[0].Fields()["INN"])

	found, err := client.SearchSuppliers(ctx, SupplierSearch{Name: "Fresh", Email: "a@b.c"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGetSupplierPriceList(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		date  *time.Time
		want  []string
		query string
	}{
		{
			name: "wrapped list",
			body: `<supplierPriceListItemDtoes>
				<supplierPriceListItemDto><nativeProductName>Milk</nativeProductName><costPrice>55.5</costPrice></supplierPriceListItemDto>
				<supplierPriceListItemDto><nativeProductName>Eggs</nativeProductName><costPrice>12</costPrice></supplierPriceListItemDto>
			</supplierPriceListItemDtoes>`,
			want: []string{"Milk", "Eggs"},
		},
		{
			name:  "single unwrapped item",
			body:  `<supplierPriceListItemDto><nativeProductName>Milk</nativeProductName><costPrice>55.5</costPrice></supplierPriceListItemDto>`,
			date:  func() *time.Time { d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC); return &d }(),
			want:  []string{"Milk"},
			query: "05.03.2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, map[string]http.HandlerFunc{
				"suppliers/S-01/pricelist": func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, tt.query, r.URL.Query().Get("date"))
					writeXML(w, tt.body)
				},
			})

			items, err := client.GetSupplierPriceList(context.Background(), "S-01", tt.date)
			require.NoError(t, err)

			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.NativeProductName)
			}
			assert.Equal(t, tt.want, names)
			assert.InDelta(t, 55.5, items[0].CostPrice, 0.001)
		})
	}
}

func TestEvents(t *testing.T) {
	eventXML := `<eventsList>
		<event>
			<id>` + productID.String() + `</id>
			<date>2024-03-05T10:00:00.000+03:00</date>
			<type>orderPaid</type>
			<attribute><name>orderNum</name><value>17</value></attribute>
		</event>
		<revision>1001</revision>
	</eventsList>`

	var (
		mu     sync.Mutex
		posted = map[string][]string{}
	)
	record := func(r *http.Request) {
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		posted[r.URL.Path] = append(posted[r.URL.Path], string(body))
		mu.Unlock()
	}

	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"events": func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				assert.Equal(t, "2024-03-05T00:00:00.000", r.URL.Query().Get("from_time"))
				assert.Equal(t, "1000", r.URL.Query().Get("from_rev"))
				assert.False(t, r.URL.Query().Has("to_time"))
			case http.MethodPost:
				record(r)
			}
			writeXML(w, eventXML)
		},
		"events/add": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			record(r)
			writeXML(w, eventXML)
		},
		"events/metadata": func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				record(r)
			}
			writeXML(w, `<groupsList>
				<group>
					<name>Orders</name>
					<type><name>orderPaid</name><severity>INFO</severity></type>
				</group>
			</groupsList>`)
		},
		"events/sessions": func(w http.ResponseWriter, r *http.Request) {
			writeXML(w, `<sessionsList><session><sessionNumber>12</sessionNumber><manager>Anna</manager></session></sessionsList>`)
		},
	})
	ctx := context.Background()

	from := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	list, err := client.GetEvents(ctx, EventsQuery{From: &from, FromRevision: Int(1000)})
	require.NoError(t, err)
	require.Len(t, list.Events, 1)
	assert.Equal(t, "orderPaid", list.Events[0].Type)
	num, ok := list.Events[0].Attribute("ORDERNUM")
	assert.True(t, ok)
	assert.Equal(t, "17", num)
	require.NotNil(t, list.Revision)
	assert.Equal(t, int64(1001), *list.Revision)

	filtered, err := client.GetEventsByFilter(ctx, []string{"orderPaid"}, nil)
	require.NoError(t, err)
	assert.Len(t, filtered.Events, 1)

	_, err = client.GetEventsByFilter(ctx, []string{"orderPaid", "orderCancelPrecheque"}, []string{"17", "18"})
	require.NoError(t, err)

	groups, err := client.GetEventMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Types, 1)
	assert.Equal(t, "INFO", groups[0].Types[0].Severity)

	groups, err = client.GetEventMetadataByFilter(ctx, []string{"orderPaid"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Orders", groups[0].Name)

	saved, err := client.AddEvents(ctx, []Event{{
		Type:       "orderPaid",
		Attributes: []EventAttribute{{Name: "orderNum", Value: "17"}},
	}})
	require.NoError(t, err)
	require.Len(t, saved.Events, 1)

	sessions, err := client.GetCashSessions(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Anna", sessions[0].Manager)

	assert.Equal(t, []string{
		`<eventsRequestData><events><event>orderPaid</event></events></eventsRequestData>`,
		`<eventsRequestData><events><event>orderPaid</event><event>orderCancelPrecheque</event></events>` +
			`<orderNums><orderNum>17</orderNum><orderNum>18</orderNum></orderNums></eventsRequestData>`,
	}, posted["/resto/api/events"])
	assert.Equal(t, []string{
		`<eventsRequestData><events><event>orderPaid</event></events></eventsRequestData>`,
	}, posted["/resto/api/events/metadata"])
	assert.Equal(t, []string{
		`<eventsList><event><type>orderPaid</type><attribute><name>orderNum</name><value>17</value></attribute></event></eventsList>`,
	}, posted["/resto/api/events/add"])
}

func TestProducts(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"v2/entities/products/list": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, []string{"GOODS", "DISH"}, r.URL.Query()["types"])
			assert.Equal(t, "false", r.URL.Query().Get("includeDeleted"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `[{"id":"`+productID.String()+`","name":"Latte","num":"00017","type":"DISH","defaultSalePrice":250,"deleted":false}]`)
		},
		"v2/entities/products/save": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "true", r.URL.Query().Get("generateNomenclatureCode"))
			var p Product
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Equal(t, "Espresso", p.Name)
			_, _ = io.WriteString(w, `{"result":"SUCCESS","response":{"id":"`+productID.String()+`","name":"Espresso"}}`)
		},
		"v2/entities/products/delete": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"items":[{"id":"`+productID.String()+`"}]}`, string(body))
			_, _ = io.WriteString(w, `{"result":"ERROR","errors":[{"code":"PRODUCT_IN_USE","value":"used in menu"}]}`)
		},
	})
	ctx := context.Background()

	products, err := client.ListProducts(ctx, ProductQuery{
		IncludeDeleted: Bool(false),
		Types:          []ProductType{ProductGoods, ProductDish},
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Latte", products[0].Name)
	assert.Equal(t, 250.0, products[0].Fields()["Price"])

	saved, err := client.SaveProduct(ctx, Product{Name: "Espresso", Type: ProductDish}, SaveProductOptions{GenerateNomenclatureCode: Bool(true)})
	require.NoError(t, err)
	require.NotNil(t, saved.Response.ID)
	assert.Equal(t, productID, *saved.Response.ID)

	result, err := client.DeleteProducts(ctx, []uuid.UUID{productID})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "PRODUCT_IN_USE: used in menu")
	require.NotNil(t, result)
	assert.Equal(t, "ERROR", result.Result)

	_, err = client.UpdateProduct(ctx, Product{Name: "No id"}, UpdateProductOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestMalformedResponse(t *testing.T) {
	client, _ := newTestServer(t, map[string]http.HandlerFunc{
		"suppliers":                 func(w http.ResponseWriter, r *http.Request) { writeXML(w, `<employees><employee>`) },
		"v2/entities/products/list": func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, `{not json`) },
	})

	_, err := client.ListSuppliers(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerialization)

	_, err = client.ListProducts(context.Background(), ProductQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerialization)
}
