package gcp

import "testing"

func TestGetPublicURLGCSDefault(t *testing.T) {
	bs := &bucketService{
		legacyBucket: bucketConfig{name: "images"},
	}

	got := bs.GetPublicURL(BucketCategoryLegacy, "photo 1.jpg")
	want := "https://storage.googleapis.com/images/photo 1.jpg"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesCDNDomain(t *testing.T) {
	bs := &bucketService{
		productsBucket: bucketConfig{name: "products", cdnDomain: "cdn.example.com"},
	}

	got := bs.GetPublicURL(BucketCategoryProducts, "products/p1/a.webp")
	want := "https://cdn.example.com/products/p1/a.webp"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesPublicBaseURL(t *testing.T) {
	bs := &bucketService{
		publicBaseURL:  "http://localhost:4443",
		productsBucket: bucketConfig{name: "products"},
	}

	got := bs.GetPublicURL(BucketCategoryProducts, "/documents/1700000000000-spec.pdf")
	want := "http://localhost:4443/products/documents/1700000000000-spec.pdf"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUsesEmulatorMediaEndpoint(t *testing.T) {
	bs := &bucketService{
		storageMode:    ObjectStorageModeGCSEmulator,
		emulatorHost:   "http://fake-gcs:4443",
		productsBucket: bucketConfig{name: "products"},
	}

	got := bs.GetPublicURL(BucketCategoryProducts, "products/p1/a.png")
	want := "http://fake-gcs:4443/storage/v1/b/products/o/products%2Fp1%2Fa.png?alt=media"
	if got != want {
		t.Fatalf("GetPublicURL: want=%q got=%q", want, got)
	}
}

func TestGetPublicURLUnknownCategoryReturnsKey(t *testing.T) {
	bs := &bucketService{}
	if got := bs.GetPublicURL(BucketCategory("avatars"), "x.png"); got != "x.png" {
		t.Fatalf("GetPublicURL: want=%q got=%q", "x.png", got)
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"products/p/a.PNG":   "image/png",
		"b.jpeg":             "image/jpeg",
		"c.webp?v=2":         "image/webp",
		"documents/spec.pdf": "application/pdf",
		"notes.txt":          "",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Fatalf("ContentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}

func TestIsPlaceholderKey(t *testing.T) {
	if !isPlaceholderKey("folder/") {
		t.Fatalf("folder/ should be a placeholder")
	}
	if !isPlaceholderKey(".emptyFolderPlaceholder") {
		t.Fatalf(".emptyFolderPlaceholder should be a placeholder")
	}
	if isPlaceholderKey("photo.jpg") {
		t.Fatalf("photo.jpg should not be a placeholder")
	}
}
