// Package pdfshdow composes shipping labels and transforms PDF documents.
//
// # Quick Start
//
// Create an orchestrator, submit a request, and close when done:
//
//	orch := pdfshdow.NewOrchestrator()
//	defer orch.Close()
//
//	res := orch.Run(ctx, pdfshdow.TaskRequest{
//	    Recipe: pdfshdow.RecipeStacked,
//	    Stacked: &pdfshdow.StackedParams{
//	        StaticPath:    "compliance.pdf",
//	        RepeatingPath: "barcodes.pdf",
//	        WidthMM:       70,
//	        HeightMM:      60,
//	        Output:        pdfshdow.Output{Name: "labels"},
//	    },
//	})
//	if err := res.Err(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Path, *res.OutputPageCount)
//
// Every request resolves to exactly one TaskResult. Failures carry an
// ErrorKind so callers can tell a bad input (validation, source) from a
// crashed worker (worker).
//
// # Recipes
//
//   - resize: every page aspect-fit onto a page of the requested size
//   - stacked-label: repeating page in the top half, static page in the
//     bottom half, or both placed by a free layout
//   - overlay-label: two or three sources placed by a free layout
//   - multi-merge: two static sources and one repeating source bound to
//     the element IDs in MultiMergeIDs
//   - pdf-to-images: one JPEG per page, stored as {N}.jpg in a zip archive
//   - image-to-pdf: one image per page on a preset or custom page size
//
// Label recipes produce one output page per page of the repeating source.
// Sources may be PDFs or images.
//
// # Free Layouts
//
// A Layout is drawn on an editor canvas whose Y axis grows downward. Each
// element is mapped onto the output page with FreeLayoutTransform, which
// scales both axes and flips Y.
//
// # Isolation
//
// By default tasks run in-process. For process isolation pass a
// ProcessRunner; the worker binary must call ServeWorker:
//
//	runner, err := pdfshdow.NewProcessRunner(logger)
//	orch := pdfshdow.NewOrchestrator(pdfshdow.WithRunner(runner))
//
// Close kills every outstanding worker and resolves its task as a worker
// fault.
//
// # Rendering
//
// pdf-to-images renders pages with MuPDF through go-fitz, using a pool of
// ResolveRenderPoolSize(0) renderers. Use WithRasterizer to substitute
// another renderer.
package pdfshdow
