package persistence

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens an in-memory database with the production schema applied
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection would get its own in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	files, err := filepath.Glob(filepath.Join("..", "..", "..", "migrations", "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "migrations not found")
	sort.Strings(files)
	for _, f := range files {
		content, err := os.ReadFile(f)
		require.NoError(t, err)
		require.NoError(t, db.Exec(string(content)).Error, "apply %s", filepath.Base(f))
	}
	return db
}

const storefrontFixtures = `
INSERT INTO currencies (id, code, name, symbol, factor) VALUES (1, 'EUR', 'Euro', '€', 1), (2, 'GBP', 'Pound', '£', 0.85);
INSERT INTO locales (id, code, language, territory) VALUES (1, 'de_DE', 'Deutsch', 'Deutschland'), (2, 'en_GB', 'English', 'United Kingdom');
INSERT INTO customer_groups (id, group_key, name, display_gross, discount) VALUES (1, 'EK', 'Shop customers', TRUE, 0), (2, 'H', 'Merchants', FALSE, 5);
INSERT INTO media (id, name, path) VALUES (1, 'logo', 'media/image/logo.png');
INSERT INTO categories (id, name, path, media_id) VALUES (3, 'Deutsch', '', 1), (4, 'English', '', NULL);
INSERT INTO category_avoid_customer_groups (category_id, customer_group_id) VALUES (3, 2), (4, 2), (4, 1);
INSERT INTO country_areas (id, name) VALUES (1, 'deutschland');
INSERT INTO countries (id, iso, name, active, area_id) VALUES (2, 'DE', 'Deutschland', TRUE, 1), (11, 'GB', 'United Kingdom', TRUE, NULL);
INSERT INTO payment_methods (id, name, description, surcharge, active, position) VALUES
	(3, 'Nachnahme', 'Cash on delivery', 2.5, TRUE, 2),
	(5, 'Vorkasse', 'Prepayment', 0, TRUE, 1),
	(6, 'Lastschrift', 'Debit', 0, TRUE, 3);
INSERT INTO dispatches (id, name, description, cost, active, position) VALUES
	(9, 'Standard Versand', '', 3.9, TRUE, 1),
	(10, 'Express', '', 9.9, FALSE, 2);
INSERT INTO templates (id, name, version) VALUES (1, 'Responsive', 3);
INSERT INTO shops (id, main_id, fallback_id, name, host, base_path, secure, is_default, currency_id, locale_id, customer_group_id, category_id, country_id, payment_id, dispatch_id, template_id) VALUES
	(1, NULL, NULL, 'Deutsch', 'shop.example', '/', TRUE, TRUE, 1, 1, 1, 3, 2, 5, 9, 1),
	(2, 1, 1, 'English', '', '/en', TRUE, FALSE, 1, 2, 1, 4, 2, 5, 9, NULL),
	(3, 1, NULL, 'Merchants', '', '/b2b', TRUE, FALSE, 1, 1, 2, 3, 2, 3, 9, 1),
	(4, NULL, NULL, 'UK', 'shop.example.co.uk', '/', FALSE, FALSE, 2, 2, 1, 4, 11, 6, 10, NULL),
	(5, 4, 4, 'UK Trade', '', '/trade', FALSE, FALSE, 2, 2, 2, 4, 11, 6, 10, NULL);
INSERT INTO translations (id, object_type, object_key, shop_id, data) VALUES
	(1, 'payment', 5, 2, '{"name":"Prepayment"}'),
	(2, 'dispatch', 9, 1, '{"name":"Fallback delivery","description":"from fallback"}'),
	(3, 'dispatch', 9, 2, '{"name":"Standard delivery"}'),
	(5, 'shop', 2, 2, '{"name":"English storefront","title":"Demo Store"}'),
	(6, 'shop', 1, 1, '{"name":"Hauptshop","title":"Demo-Shop"}'),
	(7, 'shop', 1, 2, '{"name":"Main shop"}');
INSERT INTO customers (id, email, password_hash, first_name, last_name, customer_group_key, active, default_billing_address_id, default_shipping_address_id, last_payment_id, preset_payment_id) VALUES
	(10, 'ada@example.com', 'hash', 'Ada', 'Lovelace', 'EK', TRUE, 20, 21, 3, 6),
	(11, 'guest@example.com', 'hash', 'Grace', 'Hopper', 'EK', TRUE, NULL, NULL, NULL, NULL),
	(12, 'inactive@example.com', 'hash', 'Old', 'Account', 'EK', FALSE, NULL, NULL, NULL, NULL);
INSERT INTO customer_addresses (id, customer_id, first_name, last_name, street, zip_code, city, country_id) VALUES
	(20, 10, 'Ada', 'Lovelace', 'Billing Road 1', '10115', 'Berlin', 2),
	(21, 10, 'Ada', 'Lovelace', 'Shipping Lane 2', '20095', 'Hamburg', 2),
	(22, 10, 'Ada', 'Lovelace', 'Office Street 3', '80331', 'Munich', 2);
INSERT INTO shop_pages (id, parent_id, page_key, title, content, position, shop_ids) VALUES
	(1, NULL, 'info', 'Information', '', 0, ''),
	(2, 1, 'imprint', 'Impressum', 'Angaben', 2, '|1|2|'),
	(3, 1, 'terms', 'AGB', 'Bedingungen', 1, '|1|'),
	(4, 3, 'privacy', 'Datenschutz', '', 0, '');
INSERT INTO translations (id, object_type, object_key, shop_id, data) VALUES
	(4, 'page', 2, 2, '{"title":"Imprint","content":"Legal notice"}');
`

const configuratorFixtures = `
INSERT INTO configurator_sets (id, name, type) VALUES (1, 'Shirt', 0);
INSERT INTO configurator_groups (id, name, description, position) VALUES (1, 'Farbe', '', 1), (2, 'Größe', '', 2);
INSERT INTO configurator_options (id, group_id, name, position) VALUES
	(11, 1, 'rot', 1), (12, 1, 'blau', 2),
	(21, 2, 'M', 1), (22, 2, 'L', 2);
INSERT INTO configurator_set_groups (set_id, group_id) VALUES (1, 1), (1, 2);
INSERT INTO configurator_set_options (set_id, option_id) VALUES (1, 11), (1, 12), (1, 21), (1, 22);
INSERT INTO products (id, name, configurator_set_id) VALUES (100, 'Shirt', 1), (101, 'Mug', NULL);
INSERT INTO product_variants (id, product_id, order_number, active) VALUES
	(1000, 100, 'SW-RED-M', TRUE),
	(1001, 100, 'SW-RED-L', TRUE),
	(1002, 100, 'SW-BLUE-M', TRUE),
	(1003, 100, 'SW-BLUE-L', FALSE),
	(1010, 101, 'MUG', TRUE);
INSERT INTO configurator_option_relations (variant_id, option_id) VALUES
	(1000, 11), (1000, 21),
	(1001, 11), (1001, 22),
	(1002, 12), (1002, 21),
	(1003, 12), (1003, 22);
INSERT INTO translations (id, object_type, object_key, shop_id, data) VALUES
	(10, 'configurator_group', 1, 2, '{"name":"Colour"}'),
	(11, 'configurator_option', 11, 2, '{"name":"red"}');
`

func seed(t *testing.T, db *gorm.DB, fixtures ...string) {
	t.Helper()
	for _, f := range fixtures {
		require.NoError(t, db.Exec(f).Error)
	}
}

type stubMediaResolver struct {
	calls int
}

func (s *stubMediaResolver) Resolve(_ context.Context, path string) (string, error) {
	s.calls++
	return "https://cdn.example/" + path, nil
}
