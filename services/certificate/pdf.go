package certificate

import (
	"academy/models"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"go.uber.org/zap"
)

// Page geometry in points, US Letter landscape.
const (
	pageW  = 792.0
	pageH  = 612.0
	margin = 72.0

	labelColW    = 200.0
	studentRowH  = 18.0
	trainingRowH = 20.0

	signatureSpacing = 200.0
	signatureLineW   = 180.0
	signatureImgW    = 150.0
	signatureImgH    = 30.0
	logoSize         = 60.0
)

const certificationStatement = "This certifies that the below-named individual has successfully completed the " +
	"Level Two Training Course approved by the Texas Department of Public Safety, Regulatory Services Division."

// Document holds every value printed on a certificate.
type Document struct {
	Name              NameParts
	IDNumber          string
	CompletionDate    time.Time
	CourseName        string
	CertificateNumber string
	School            models.School
	// TemplatePath is an optional PDF whose first page is used as background.
	TemplatePath string
}

// Renderer draws certificates. Asset paths (logo, signatures, templates) are
// resolved with Resolve.
type Renderer struct {
	Resolve func(path string) string
	Log     *zap.Logger
}

// Render writes the certificate PDF for doc to w.
func (r *Renderer) Render(doc Document, w io.Writer) error {
	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Certificate "+doc.CertificateNumber, true)
	pdf.SetCreator("academy", true)
	pdf.AddPage()
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)

	if !r.useTemplate(pdf, doc.TemplatePath) {
		r.drawDesign(pdf, doc.School)
	}
	r.drawFields(pdf, doc)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render certificate: %w", err)
	}
	return pdf.Output(w)
}

// useTemplate imports the first page of path as the page background.
func (r *Renderer) useTemplate(pdf *fpdf.Fpdf, path string) (ok bool) {
	if path == "" {
		return false
	}
	full := r.resolve(path)
	if _, err := os.Stat(full); err != nil {
		r.Log.Warn("certificate template not found, using built-in layout", zap.String("path", full))
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.Log.Warn("certificate template could not be imported", zap.String("path", full), zap.Any("error", rec))
			ok = false
		}
	}()
	tpl := gofpdi.ImportPage(pdf, full, 1, "/MediaBox")
	gofpdi.UseImportedTemplate(pdf, tpl, 0, 0, pageW, pageH)
	return true
}

func (r *Renderer) drawDesign(pdf *fpdf.Fpdf, school models.School) {
	if school.Logo != "" {
		r.drawImage(pdf, school.Logo, margin, 40, logoSize, logoSize)
	}

	pdf.SetFont("Times", "B", 14)
	pdf.Text(150, 80, "Texas Department of Public Safety")
	pdf.SetFont("Times", "", 12)
	pdf.Text(150, 100, "Regulatory Services Division")
	pdf.SetFont("Times", "", 10)
	pdf.Text(150, 115, "www.dps.texas.gov")

	pdf.SetFont("Times", "B", 12)
	program := "PRIVATE SECURITY PROGRAM"
	pdf.Text(pageW-margin-pdf.GetStringWidth(program), 80, program)

	centered(pdf, "SECURITY OFFICER TRAINING COURSE", "B", 16, 150)
	centered(pdf, "LEVEL II CERTIFICATE OF COMPLETION", "B", 14, 170)

	pdf.SetFont("Times", "", 10)
	pdf.SetXY(margin, 200)
	pdf.MultiCell(pageW-2*margin, 12, certificationStatement, "", "L", false)
}

func (r *Renderer) drawFields(pdf *fpdf.Fpdf, doc Document) {
	tableW := pageW - 2*margin
	school := doc.School

	y := 250.0
	pdf.SetFont("Times", "B", 12)
	pdf.Text(margin, y, "STUDENT INFORMATION")
	y += 12
	drawTable(pdf, y, tableW, studentRowH, [][2]string{
		{"Last Name", doc.Name.Last},
		{"First Name", doc.Name.First},
		{"Middle Initial", doc.Name.MiddleInitial},
		{"Identification Number", doc.IDNumber},
	})
	y += 4*studentRowH + 20

	pdf.SetFont("Times", "B", 12)
	pdf.Text(margin, y, "IN-PERSON CLASSROOM OR ONLINE TRAINING")
	y += 12
	rep := school.BusinessRepresentative
	if rep == "" {
		rep = school.InstructorName
	}
	rows := [][2]string{
		{"Business Name", school.Name},
		{"Business License Number", school.LicenseNumber},
		{"Instructor Name", school.InstructorName},
		{"Name of Business Representative", rep},
		{"Course Completion Date", FormatDate(doc.CompletionDate)},
		{"Was this training conducted online?", ""},
	}
	drawTable(pdf, y, tableW, trainingRowH, rows)
	drawOnlineCheckboxes(pdf, y+5*trainingRowH)
	y += 6*trainingRowH + 20

	r.drawSignature(pdf, margin, y, "Instructor Signature", school.InstructorSignature)
	r.drawSignature(pdf, margin+signatureSpacing, y, "Business Representative Signature", school.RepresentativeSignature())

	pdf.SetFont("Times", "", 8)
	number := "Certificate No. " + doc.CertificateNumber
	pdf.Text(pageW-margin-pdf.GetStringWidth(number), pageH-24, number)
}

// drawTable draws a two-column bordered table with its top edge at top.
func drawTable(pdf *fpdf.Fpdf, top, width, rowH float64, rows [][2]string) {
	height := rowH * float64(len(rows))
	pdf.Rect(margin, top, width, height, "D")
	pdf.Line(margin+labelColW, top, margin+labelColW, top+height)
	for i := 1; i < len(rows); i++ {
		ly := top + float64(i)*rowH
		pdf.Line(margin, ly, margin+width, ly)
	}
	for i, row := range rows {
		baseline := top + float64(i)*rowH + rowH/2 + 3.5
		pdf.SetFont("Times", "B", 10)
		pdf.Text(margin+5, baseline, row[0])
		pdf.SetFont("Times", "", 10)
		pdf.Text(margin+labelColW+5, baseline, row[1])
	}
}

// drawOnlineCheckboxes draws the Yes/No pair with No checked.
func drawOnlineCheckboxes(pdf *fpdf.Fpdf, rowTop float64) {
	x := margin + labelColW
	boxTop := rowTop + (trainingRowH-12)/2
	baseline := rowTop + trainingRowH/2 + 3.5

	pdf.Rect(x+5, boxTop, 12, 12, "D")
	pdf.SetFont("Times", "", 10)
	pdf.Text(x+20, baseline, "Yes")

	pdf.Rect(x+60, boxTop, 12, 12, "D")
	pdf.SetFont("ZapfDingbats", "", 10)
	pdf.Text(x+61.5, boxTop+10, "4")
	pdf.SetFont("Times", "", 10)
	pdf.Text(x+75, baseline, "No")
}

func (r *Renderer) drawSignature(pdf *fpdf.Fpdf, x, y float64, label, imagePath string) {
	pdf.SetFont("Times", "B", 10)
	pdf.Text(x, y, label)
	if imagePath != "" {
		r.drawImage(pdf, imagePath, x, y+8, signatureImgW, signatureImgH)
	}
	pdf.Line(x, y+42, x+signatureLineW, y+42)
}

// drawImage embeds a PNG or JPEG. Missing or unreadable images are skipped.
func (r *Renderer) drawImage(pdf *fpdf.Fpdf, path string, x, y, w, h float64) {
	full := r.resolve(path)
	img, err := loadImage(full)
	if err != nil {
		r.Log.Warn("skipping certificate image", zap.String("path", full), zap.Error(err))
		return
	}
	opts := fpdf.ImageOptions{ImageType: img.kind}
	pdf.RegisterImageOptionsReader(full, opts, img.reader())
	if !pdf.Ok() {
		r.Log.Warn("could not embed certificate image", zap.String("path", full), zap.Error(pdf.Error()))
		pdf.ClearError()
		return
	}
	pdf.ImageOptions(full, x, y, w, h, false, opts, 0, "")
}

func (r *Renderer) resolve(path string) string {
	if r.Resolve == nil {
		return path
	}
	return r.Resolve(path)
}

func centered(pdf *fpdf.Fpdf, text, style string, size, y float64) {
	pdf.SetFont("Times", style, size)
	pdf.Text((pageW-pdf.GetStringWidth(text))/2, y, text)
}
