package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/breakout/common"
)

// Menu is a centered panel with a title and a column of buttons.
type Menu struct {
	ui    *ebitenui.UI
	title *widget.Text
}

type menuButton struct {
	label   string
	onClick func()
}

// NewPauseUI builds the pause menu with Resume, Restart, and Quit buttons.
func NewPauseUI(g *Game) *Menu {
	return newMenu("Paused", []menuButton{
		{label: "Resume", onClick: func() { g.paused = false }},
		{label: "Restart", onClick: g.Restart},
		{label: "Quit", onClick: g.Quit},
	})
}

// NewGameOverUI builds the panel shown once the last life is lost. The game
// updates its title with the final score.
func NewGameOverUI(g *Game) *Menu {
	return newMenu("Game Over", []menuButton{
		{label: "Play Again", onClick: g.Restart},
		{label: "Quit", onClick: g.Quit},
	})
}

// newMenu uses colored nine-slices and the built-in basic font, so it needs
// no theme assets.
func newMenu(heading string, buttons []menuButton) *Menu {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	hoverImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	centered := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	title := widget.NewText(
		widget.TextOpts.Text(heading, &face, white),
		widget.TextOpts.WidgetOpts(centered),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.BaseWidth/2, common.BaseHeight/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(title)

	for _, b := range buttons {
		onClick := b.onClick
		panel.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: hoverImg, Pressed: btnImg}),
			widget.ButtonOpts.Text(b.label, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(centered),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
			}),
		))
	}

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &Menu{ui: &ebitenui.UI{Container: root}, title: title}
}

func (m *Menu) SetTitle(s string) {
	if m == nil || m.title == nil {
		return
	}
	m.title.Label = s
}

func (m *Menu) Update() {
	if m == nil {
		return
	}
	m.ui.Update()
}

func (m *Menu) Draw(screen *ebiten.Image) {
	if m == nil {
		return
	}
	m.ui.Draw(screen)
}
